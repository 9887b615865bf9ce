package schema

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// ValidationError describes why a record was diverted to the errors
// artifact during normalization.
type ValidationError struct {
	Kind    fair4ml.EntityKind `json:"kind"`
	Subject string             `json:"subject"`
	Reason  string             `json:"reason"`
	Record  Record             `json:"record"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s record %s: %s", e.Kind, e.Subject, e.Reason)
}

// iriPredicates maps each kind to the predicates whose values must be
// absolute IRIs when present.
var iriPredicates = map[fair4ml.EntityKind][]string{
	fair4ml.KindMLModel: {
		fair4ml.URL, fair4ml.License, fair4ml.Keywords, fair4ml.InLanguage,
		fair4ml.MLTask, fair4ml.FineTunedFrom, fair4ml.TrainedOn,
		fair4ml.TestedOn, fair4ml.ValidatedOn, fair4ml.EvaluatedOn,
		fair4ml.ReferencePublication, fair4ml.DiscussionURL,
		fair4ml.ArchivedAt, fair4ml.IssueTracker,
	},
	fair4ml.KindArticle:  {fair4ml.URL, fair4ml.SameAs},
	fair4ml.KindLicense:  {fair4ml.URL, fair4ml.SameAs},
	fair4ml.KindDataset:  {fair4ml.URL, fair4ml.SameAs, fair4ml.License, fair4ml.ConformsTo},
	fair4ml.KindTask:     {fair4ml.URL, fair4ml.SameAs, fair4ml.InDefinedTermSet},
	fair4ml.KindKeyword:  {fair4ml.URL, fair4ml.SameAs, fair4ml.InDefinedTermSet},
	fair4ml.KindLanguage: {fair4ml.URL, fair4ml.SameAs},
}

// Validator enforces per-kind schema constraints on normalized records.
type Validator struct {
	checker *validator.Validate
}

// NewValidator creates a record validator.
func NewValidator() *Validator {
	return &Validator{checker: validator.New()}
}

// Validate checks one record against its kind schema. It returns a
// *ValidationError on failure so callers can divert the record.
func (v *Validator) Validate(kind fair4ml.EntityKind, r Record) error {
	fail := func(reason string) error {
		return &ValidationError{Kind: kind, Subject: r.MLentoryIRI(), Reason: reason, Record: r}
	}

	if len(r.Identifiers()) == 0 {
		return fail("identifier list is empty")
	}
	if r.MLentoryIRI() == "" {
		return fail("identifier list lacks the MLentory IRI")
	}
	if r.String(fair4ml.Name) == "" {
		return fail("name is required")
	}

	for _, predicate := range iriPredicates[kind] {
		for _, value := range r.Strings(predicate) {
			if err := v.checker.Var(value, "url"); err != nil {
				return fail(fmt.Sprintf("predicate %s holds non-IRI value %q", predicate, value))
			}
		}
	}

	for predicate := range fair4ml.TemporalPredicates {
		if value := r.String(predicate); value != "" {
			if _, err := time.Parse(time.RFC3339, value); err != nil {
				return fail(fmt.Sprintf("predicate %s holds non-ISO datetime %q", predicate, value))
			}
		}
	}

	for predicate := range r.Metadata() {
		if _, ok := r[predicate]; !ok {
			return fail(fmt.Sprintf("extraction metadata references absent predicate %s", predicate))
		}
	}

	return nil
}
