package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// Record is a normalized entity: a map keyed by predicate IRIs. Values are
// strings, string lists, or nested maps (extraction metadata, metrics).
// The IRI-keyed map is the wire form of every normalized artifact; typed
// access goes through the helpers below.
type Record map[string]any

// EnrichedKey flags whether an external lookup succeeded for this record.
// Stub records carry false.
const EnrichedKey = "https://w3id.org/mlentory/enriched"

// New creates a record for an entity, minting its MLentory IRI as the
// first identifier.
func New(kind fair4ml.EntityKind, platform, id string) Record {
	r := Record{}
	r[fair4ml.Identifier] = []string{fair4ml.MintIRI(kind, platform, id)}
	return r
}

// Stub creates a placeholder record for an id whose external lookup
// failed. The id is preserved so downstream linkage does not break.
func Stub(kind fair4ml.EntityKind, platform, id string, cause error) Record {
	r := New(kind, platform, id)
	r[fair4ml.Name] = id
	r[EnrichedKey] = false
	meta := FieldMetadata{Method: MethodStubbed, Confidence: 0}
	if cause != nil {
		meta.Error = cause.Error()
	}
	r.SetMetadata(fair4ml.Name, meta)
	return r
}

// Identifiers returns the identifier list, empty when absent.
func (r Record) Identifiers() []string {
	return r.Strings(fair4ml.Identifier)
}

// MLentoryIRI returns the minted MLentory IRI from the identifier list,
// or "" when the record carries none.
func (r Record) MLentoryIRI() string {
	for _, id := range r.Identifiers() {
		if fair4ml.IsMLentoryIRI(id) {
			return id
		}
	}
	return ""
}

// AddIdentifier appends a secondary identifier, skipping duplicates.
func (r Record) AddIdentifier(id string) {
	ids := r.Identifiers()
	for _, existing := range ids {
		if existing == id {
			return
		}
	}
	r[fair4ml.Identifier] = append(ids, id)
}

// Set stores a predicate value together with its extraction metadata.
func (r Record) Set(predicate string, value any, meta FieldMetadata) {
	r[predicate] = value
	r.SetMetadata(predicate, meta)
}

// SetMetadata records extraction metadata for a predicate the record
// already carries.
func (r Record) SetMetadata(predicate string, meta FieldMetadata) {
	em, _ := r[fair4ml.ExtractionMetadataKey].(map[string]FieldMetadata)
	if em == nil {
		em = map[string]FieldMetadata{}
		r[fair4ml.ExtractionMetadataKey] = em
	}
	em[predicate] = meta
}

// Metadata returns the extraction metadata map, never nil. It tolerates
// the generic map form produced by JSON decoding.
func (r Record) Metadata() map[string]FieldMetadata {
	switch em := r[fair4ml.ExtractionMetadataKey].(type) {
	case map[string]FieldMetadata:
		return em
	case map[string]any:
		out := make(map[string]FieldMetadata, len(em))
		for k, v := range em {
			raw, err := json.Marshal(v)
			if err != nil {
				continue
			}
			var fm FieldMetadata
			if err := json.Unmarshal(raw, &fm); err != nil {
				continue
			}
			out[k] = fm
		}
		return out
	default:
		return map[string]FieldMetadata{}
	}
}

// String returns the predicate value as a string, "" when absent or of
// another shape.
func (r Record) String(predicate string) string {
	switch v := r[predicate].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// Strings returns the predicate value as a string list. Scalars widen to
// a one-element list; absent predicates yield nil.
func (r Record) Strings(predicate string) []string {
	switch v := r[predicate].(type) {
	case []string:
		return v
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Enriched reports whether the record was successfully enriched. Records
// without the flag count as enriched.
func (r Record) Enriched() bool {
	if v, ok := r[EnrichedKey].(bool); ok {
		return v
	}
	return true
}

// Predicates returns the record's predicate keys sorted, excluding the
// extraction-metadata alias.
func (r Record) Predicates() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		if k == fair4ml.ExtractionMetadataKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NormalizeDatetime widens and normalizes a temporal value to RFC 3339.
// Date-only inputs widen to midnight UTC; a trailing Z is kept; integer
// epochs convert to UTC. Unparseable input returns an error.
func NormalizeDatetime(value any) (string, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC().Format(time.RFC3339), nil
	case int64:
		return time.Unix(v, 0).UTC().Format(time.RFC3339), nil
	case float64:
		return time.Unix(int64(v), 0).UTC().Format(time.RFC3339), nil
	case string:
		for _, layout := range []string{
			time.RFC3339Nano,
			time.RFC3339,
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006-01-02",
		} {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC().Format(time.RFC3339), nil
			}
		}
		return "", fmt.Errorf("unparseable datetime %q", v)
	default:
		return "", fmt.Errorf("unsupported datetime type %T", value)
	}
}

// ReadFile loads a JSON array of records.
func ReadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse records %s: %w", path, err)
	}
	return records, nil
}

// WriteFile persists records as an indented UTF-8 JSON array. Map keys
// marshal in sorted order, so re-running a stage on identical input
// produces byte-identical output.
func WriteFile(path string, records []Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
