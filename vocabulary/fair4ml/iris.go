package fair4ml

// Namespace is the base IRI prefix for FAIR4ML ontology terms.
const Namespace = "https://w3id.org/fair4ml#"

// SchemaNamespace is the base IRI prefix for schema.org terms.
const SchemaNamespace = "https://schema.org/"

// CodeMetaNamespace is the base IRI prefix for CodeMeta terms.
const CodeMetaNamespace = "https://w3id.org/codemeta/"

// GraphNamespace is the base IRI for MLentory entity instances.
const GraphNamespace = "https://w3id.org/mlentory/mlentory_graph/"

// ExtractionMetadataKey is the record key that carries per-predicate
// extraction provenance. It is not a graph predicate: loaders and the
// document indexer skip it, the temporal metadata writer consumes it.
const ExtractionMetadataKey = "https://w3id.org/mlentory/extraction_metadata"

// MetricsKey carries free-form platform counters (downloads, likes).
const MetricsKey = "https://w3id.org/mlentory/metrics"

// Class IRIs define the types of entities in the MLentory graph.
const (
	// ClassMLModel represents a machine learning model.
	ClassMLModel = Namespace + "MLModel"

	// ClassScholarlyArticle represents a referenced publication.
	ClassScholarlyArticle = SchemaNamespace + "ScholarlyArticle"

	// ClassCreativeWork represents a license document.
	ClassCreativeWork = SchemaNamespace + "CreativeWork"

	// ClassDataset represents a training/evaluation dataset.
	ClassDataset = SchemaNamespace + "Dataset"

	// ClassDefinedTerm represents a task or keyword term.
	ClassDefinedTerm = SchemaNamespace + "DefinedTerm"

	// ClassLanguage represents a natural language.
	ClassLanguage = SchemaNamespace + "Language"
)

// EntityKind identifies a normalized entity kind. Kind strings are part of
// the minted IRI and therefore stable across releases.
type EntityKind string

const (
	KindMLModel  EntityKind = "mlmodel"
	KindArticle  EntityKind = "article"
	KindLicense  EntityKind = "license"
	KindDataset  EntityKind = "dataset"
	KindTask     EntityKind = "task"
	KindKeyword  EntityKind = "keyword"
	KindLanguage EntityKind = "language"
)

// AllKinds lists every entity kind in loader order.
var AllKinds = []EntityKind{
	KindMLModel, KindArticle, KindLicense, KindDataset,
	KindTask, KindKeyword, KindLanguage,
}

// ClassForKind returns the rdf:type class IRI for an entity kind.
func ClassForKind(kind EntityKind) string {
	switch kind {
	case KindMLModel:
		return ClassMLModel
	case KindArticle:
		return ClassScholarlyArticle
	case KindLicense:
		return ClassCreativeWork
	case KindDataset:
		return ClassDataset
	case KindTask, KindKeyword:
		return ClassDefinedTerm
	case KindLanguage:
		return ClassLanguage
	default:
		return SchemaNamespace + "Thing"
	}
}
