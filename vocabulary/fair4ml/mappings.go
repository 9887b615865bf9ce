package fair4ml

// Well-known RDF namespaces used by the loader and the Turtle exporter.
const (
	RDFType   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	XSDString = "http://www.w3.org/2001/XMLSchema#string"
	XSDDate   = "http://www.w3.org/2001/XMLSchema#dateTime"
)

// DefaultPrefixes returns the namespace prefix table for Turtle export.
func DefaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":      "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
		"rdfs":     "http://www.w3.org/2000/01/rdf-schema#",
		"xsd":      "http://www.w3.org/2001/XMLSchema#",
		"schema":   SchemaNamespace,
		"fair4ml":  Namespace,
		"codemeta": CodeMetaNamespace,
		"mlentory": GraphNamespace,
	}
}

// ModelPredicates lists every MLModel predicate the RDF builder and the
// temporal metadata writer recognize, in stable emission order.
var ModelPredicates = []string{
	Identifier,
	Name,
	URL,
	Author,
	SharedBy,
	DateCreated,
	DateModified,
	DatePublished,
	Description,
	Keywords,
	InLanguage,
	License,
	MLTask,
	ModelCategory,
	FineTunedFrom,
	IntendedUse,
	UsageInstructions,
	CodeSampleSnippet,
	Risks,
	BiasConcerns,
	Limitations,
	EthicalConcerns,
	SocialConcerns,
	LegalConcerns,
	TrainedOn,
	TestedOn,
	ValidatedOn,
	EvaluatedOn,
	EvaluationMetrics,
	ReferencePublication,
	DiscussionURL,
	ArchivedAt,
	Readme,
	IssueTracker,
	MemoryRequirements,
	CO2Emitted,
}

// LinkPredicates maps a model predicate to the entity kind its IRI values
// point at. Used by graph hydration and the translation map builder.
var LinkPredicates = map[string]EntityKind{
	Keywords:             KindKeyword,
	InLanguage:           KindLanguage,
	License:              KindLicense,
	MLTask:               KindTask,
	FineTunedFrom:        KindMLModel,
	TrainedOn:            KindDataset,
	TestedOn:             KindDataset,
	ValidatedOn:          KindDataset,
	EvaluatedOn:          KindDataset,
	ReferencePublication: KindArticle,
}
