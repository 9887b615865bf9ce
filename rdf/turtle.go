package rdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// TurtleExporter serializes triples to Turtle, grouped by subject. The
// exporter holds the run's triples in memory and can restrict output to
// the subjects written in the current batch.
type TurtleExporter struct {
	prefixes  map[string]string
	bySubject map[string][]Triple
	order     []string
}

// NewTurtleExporter creates a Turtle exporter with the standard MLentory
// prefix table.
func NewTurtleExporter() *TurtleExporter {
	return &TurtleExporter{
		prefixes:  fair4ml.DefaultPrefixes(),
		bySubject: make(map[string][]Triple),
	}
}

// Add records triples for export.
func (e *TurtleExporter) Add(triples ...Triple) {
	for _, t := range triples {
		if _, seen := e.bySubject[t.Subject]; !seen {
			e.order = append(e.order, t.Subject)
		}
		e.bySubject[t.Subject] = append(e.bySubject[t.Subject], t)
	}
}

// Subjects returns every subject added so far, in insertion order.
func (e *TurtleExporter) Subjects() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Export serializes all subjects.
func (e *TurtleExporter) Export() string {
	return e.ExportSubjects(e.order)
}

// ExportSubjects serializes only the given subjects, preserving the
// given order. Unknown subjects are ignored.
func (e *TurtleExporter) ExportSubjects(subjects []string) string {
	var sb strings.Builder

	prefixNames := make([]string, 0, len(e.prefixes))
	for name := range e.prefixes {
		prefixNames = append(prefixNames, name)
	}
	sort.Strings(prefixNames)
	for _, name := range prefixNames {
		sb.WriteString(fmt.Sprintf("@prefix %s: <%s> .\n", name, e.prefixes[name]))
	}
	sb.WriteString("\n")

	for _, subject := range subjects {
		triples, ok := e.bySubject[subject]
		if !ok {
			continue
		}
		e.writeSubject(&sb, subject, triples)
		sb.WriteString("\n")
	}

	return sb.String()
}

// WriteFile serializes the given subjects into a Turtle file.
func (e *TurtleExporter) WriteFile(path string, subjects []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(e.ExportSubjects(subjects)), 0o644); err != nil {
		return fmt.Errorf("failed to write Turtle export: %w", err)
	}
	return nil
}

func (e *TurtleExporter) writeSubject(sb *strings.Builder, subject string, triples []Triple) {
	sb.WriteString(fmt.Sprintf("<%s>\n", subject))
	for i, t := range triples {
		sb.WriteString(fmt.Sprintf("    <%s> %s", t.Predicate, formatObject(t.Object)))
		if i < len(triples)-1 {
			sb.WriteString(" ;\n")
		} else {
			sb.WriteString(" .\n")
		}
	}
}

func formatObject(o Object) string {
	if o.IRI {
		return fmt.Sprintf("<%s>", o.Value)
	}
	literal := `"` + escapeLiteral(o.Value) + `"`
	if o.Datatype != "" && o.Datatype != fair4ml.XSDString {
		literal += fmt.Sprintf("^^<%s>", o.Datatype)
	}
	return literal
}

// escapeLiteral applies the Turtle string escape set: backslash, quote,
// and the named control escapes, with \u for the remaining controls.
func escapeLiteral(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				sb.WriteString(fmt.Sprintf(`\u%04X`, r))
			} else {
				sb.WriteRune(r)
			}
		}
	}
	return sb.String()
}
