// Package normalize maps raw platform records to the validated
// IRI-keyed FAIR form: platform-specific basic mapping, entity linkage
// merging, and per-record validation with an errors artifact.
package normalize

import (
	"fmt"
	"strings"

	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// sectionHeaders maps model-card section titles to the predicates their
// prose fills. Matching is case-insensitive on the markdown heading.
var sectionHeaders = map[string]string{
	"intended use":                 fair4ml.IntendedUse,
	"intended uses & limitations":  fair4ml.IntendedUse,
	"how to use":                   fair4ml.UsageInstructions,
	"usage":                        fair4ml.UsageInstructions,
	"limitations":                  fair4ml.Limitations,
	"bias":                         fair4ml.BiasConcerns,
	"bias, risks, and limitations": fair4ml.Limitations,
	"risks":                        fair4ml.Risks,
	"ethical considerations":       fair4ml.EthicalConcerns,
	"environmental impact":         fair4ml.CO2Emitted,
}

// cardSections splits a markdown card into heading → body text.
func cardSections(card string) map[string]string {
	sections := map[string]string{}
	var current string
	var body []string

	flush := func() {
		if current != "" && len(body) > 0 {
			sections[current] = strings.TrimSpace(strings.Join(body, "\n"))
		}
		body = nil
	}

	for _, line := range strings.Split(card, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			flush()
			current = strings.ToLower(strings.TrimSpace(strings.TrimLeft(trimmed, "# ")))
			continue
		}
		if current != "" {
			body = append(body, line)
		}
	}
	flush()
	return sections
}

// applyCardSections fills documentation predicates from recognized card
// sections.
func applyCardSections(r schema.Record, card string) {
	for heading, body := range cardSections(card) {
		predicate, ok := sectionHeaders[heading]
		if !ok || body == "" {
			continue
		}
		if _, exists := r[predicate]; exists {
			continue
		}
		r.Set(predicate, body, schema.Meta(schema.MethodParsed, 0.8, "card:"+heading))
	}
}

// firstParagraph returns the first prose paragraph of a markdown card,
// skipping front matter and headings.
func firstParagraph(card string) string {
	text := card
	if strings.HasPrefix(text, "---") {
		if idx := strings.Index(text[3:], "---"); idx >= 0 {
			text = text[idx+6:]
		}
	}
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" || strings.HasPrefix(block, "#") || strings.HasPrefix(block, "|") ||
			strings.HasPrefix(block, "```") || strings.HasPrefix(block, "<") {
			continue
		}
		return block
	}
	return ""
}

// setDatetime normalizes and stores a temporal predicate, skipping
// unparseable values.
func setDatetime(r schema.Record, predicate string, value any, sourceField string) error {
	if value == nil || value == "" {
		return nil
	}
	normalized, err := schema.NormalizeDatetime(value)
	if err != nil {
		return fmt.Errorf("%s: %w", sourceField, err)
	}
	r.Set(predicate, normalized, schema.Meta(schema.MethodParsed, 1.0, sourceField))
	return nil
}
