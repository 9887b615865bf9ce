package fair4ml

// schema.org predicates shared across entity kinds.
const (
	// Identifier is the list of identifiers; always contains the minted
	// MLentory IRI, all others are secondary.
	Identifier = SchemaNamespace + "identifier"

	// Name is the display name of the entity.
	Name = SchemaNamespace + "name"

	// URL is the canonical source URL.
	URL = SchemaNamespace + "url"

	// SameAs links to equivalent resources on other platforms.
	SameAs = SchemaNamespace + "sameAs"

	// Description is the free-text description.
	Description = SchemaNamespace + "description"

	// AlternateName holds alternative labels (e.g. language codes).
	AlternateName = SchemaNamespace + "alternateName"

	// Author is the creating agent.
	Author = SchemaNamespace + "author"

	// Creator is the dataset creator.
	Creator = SchemaNamespace + "creator"

	// Keywords links a model to keyword DefinedTerm IRIs.
	Keywords = SchemaNamespace + "keywords"

	// InLanguage links a model to Language IRIs.
	InLanguage = SchemaNamespace + "inLanguage"

	// License links to the license CreativeWork IRI.
	License = SchemaNamespace + "license"

	// DateCreated is the creation timestamp.
	DateCreated = SchemaNamespace + "dateCreated"

	// DateModified is the last-modification timestamp.
	DateModified = SchemaNamespace + "dateModified"

	// DatePublished is the publication timestamp.
	DatePublished = SchemaNamespace + "datePublished"

	// DiscussionURL is the community discussion page.
	DiscussionURL = SchemaNamespace + "discussionUrl"

	// ArchivedAt is the archival location.
	ArchivedAt = SchemaNamespace + "archivedAt"

	// About holds subject tags of an article.
	About = SchemaNamespace + "about"

	// IsPartOf is the containing venue or collection.
	IsPartOf = SchemaNamespace + "isPartOf"

	// Comment is free-form commentary.
	Comment = SchemaNamespace + "comment"

	// Abstract is the license abstract.
	Abstract = SchemaNamespace + "abstract"

	// Text is the full license text.
	Text = SchemaNamespace + "text"

	// Version is the version label.
	Version = SchemaNamespace + "version"

	// CopyrightNotice is the license copyright notice.
	CopyrightNotice = SchemaNamespace + "copyrightNotice"

	// LegislationJurisdiction is the governing jurisdiction.
	LegislationJurisdiction = SchemaNamespace + "legislationJurisdiction"

	// ConformsTo is the standard a dataset conforms to.
	ConformsTo = SchemaNamespace + "conformsTo"

	// CiteAs is the preferred citation.
	CiteAs = SchemaNamespace + "citeAs"

	// TermCode is the code of a DefinedTerm.
	TermCode = SchemaNamespace + "termCode"

	// InDefinedTermSet is the term catalog a DefinedTerm belongs to.
	InDefinedTermSet = SchemaNamespace + "inDefinedTermSet"

	// CodeSampleSnippet is an example usage snippet.
	CodeSampleSnippet = SchemaNamespace + "codeSampleType"
)

// FAIR4ML predicates specific to ML models.
const (
	// SharedBy is the agent that uploaded the model to the platform.
	SharedBy = Namespace + "sharedBy"

	// MLTask links a model to task DefinedTerm IRIs.
	MLTask = Namespace + "mlTask"

	// ModelCategory is the architectural category of the model.
	ModelCategory = Namespace + "modelCategory"

	// FineTunedFrom links a model to its base model IRIs.
	FineTunedFrom = Namespace + "fineTunedFrom"

	// IntendedUse describes the intended downstream use.
	IntendedUse = Namespace + "intendedUse"

	// UsageInstructions describes how to run the model.
	UsageInstructions = Namespace + "usageInstructions"

	// TrainedOn links a model to training dataset IRIs.
	TrainedOn = Namespace + "trainedOn"

	// TestedOn links a model to test dataset IRIs.
	TestedOn = Namespace + "testedOn"

	// ValidatedOn links a model to validation dataset IRIs.
	ValidatedOn = Namespace + "validatedOn"

	// EvaluatedOn links a model to evaluation dataset IRIs.
	EvaluatedOn = Namespace + "evaluatedOn"

	// EvaluationMetrics holds reported evaluation results.
	EvaluationMetrics = Namespace + "evaluationMetrics"

	// Risks documents known risks of the model.
	Risks = Namespace + "risks"

	// BiasConcerns documents bias concerns.
	BiasConcerns = Namespace + "biasConcerns"

	// Limitations documents technical limitations.
	Limitations = Namespace + "limitations"

	// EthicalConcerns documents ethical considerations.
	EthicalConcerns = Namespace + "ethicalConcerns"

	// SocialConcerns documents social considerations.
	SocialConcerns = Namespace + "socialConcerns"

	// LegalConcerns documents legal considerations.
	LegalConcerns = Namespace + "legalConcerns"

	// MemoryRequirements documents memory needed to run the model.
	MemoryRequirements = Namespace + "memoryRequirements"

	// CO2Emitted is the reported training CO2 equivalent.
	CO2Emitted = Namespace + "co2eEmissions"
)

// CodeMeta predicates.
const (
	// Readme is the model card / readme location or text.
	Readme = CodeMetaNamespace + "readme"

	// IssueTracker is the issue tracker URL.
	IssueTracker = CodeMetaNamespace + "issueTracker"

	// ReferencePublication links a model to article IRIs.
	ReferencePublication = CodeMetaNamespace + "referencePublication"
)

// TemporalPredicates lists predicates whose literal values serialize as
// xsd:dateTime.
var TemporalPredicates = map[string]bool{
	DateCreated:   true,
	DateModified:  true,
	DatePublished: true,
}

// IsTemporal reports whether a predicate carries a datetime value.
func IsTemporal(predicate string) bool {
	return TemporalPredicates[predicate]
}
