// Package schema defines the normalized FAIR record form shared by every
// pipeline stage: IRI-keyed records, per-field extraction provenance, and
// per-kind validation.
package schema

// Extraction methods recorded in field metadata.
const (
	MethodParsed    = "parsed"
	MethodScraped   = "scraped"
	MethodAPI       = "api_fetch"
	MethodCurated   = "curated_catalog"
	MethodLinked    = "entity_linking"
	MethodNotFound  = "not_found"
	MethodStubbed   = "stub"
	MethodGenerated = "generated"
)

// FieldMetadata records how one predicate value was obtained.
type FieldMetadata struct {
	Method      string  `json:"extraction_method"`
	Confidence  float64 `json:"confidence"`
	SourceField string  `json:"source_field,omitempty"`
	Notes       string  `json:"notes,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// Meta builds a FieldMetadata for a directly parsed platform field.
func Meta(method string, confidence float64, sourceField string) FieldMetadata {
	return FieldMetadata{Method: method, Confidence: confidence, SourceField: sourceField}
}
