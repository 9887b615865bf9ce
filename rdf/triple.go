// Package rdf translates normalized records into RDF triples, persists
// them to the triple store, and exports Turtle batches.
package rdf

import (
	"net/url"
	"strings"

	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// Object is the object position of a triple: either an IRI or a typed
// literal.
type Object struct {
	Value    string `json:"value"`
	IRI      bool   `json:"iri"`
	Datatype string `json:"datatype,omitempty"`
}

// Triple is one (IRI, IRI, IRI-or-literal) statement.
type Triple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    Object `json:"object"`
}

// IRIObject builds an IRI object.
func IRIObject(iri string) Object {
	return Object{Value: iri, IRI: true}
}

// Literal builds a typed literal object.
func Literal(value, datatype string) Object {
	return Object{Value: value, Datatype: datatype}
}

// IsAbsoluteIRI reports whether a value parses as an absolute IRI with a
// scheme and host.
func IsAbsoluteIRI(value string) bool {
	u, err := url.Parse(value)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// ShortName reduces a predicate IRI to its local name, the property key
// used on graph nodes.
func ShortName(predicate string) string {
	if idx := strings.LastIndex(predicate, "#"); idx >= 0 && idx < len(predicate)-1 {
		return predicate[idx+1:]
	}
	if idx := strings.LastIndex(predicate, "/"); idx >= 0 && idx < len(predicate)-1 {
		return predicate[idx+1:]
	}
	return predicate
}

// RelationshipForPredicate maps IRI-valued model predicates to the
// relationship types of the property-graph projection.
var RelationshipForPredicate = map[string]string{
	fair4ml.TrainedOn:            "TRAINED_ON",
	fair4ml.TestedOn:             "TESTED_ON",
	fair4ml.ValidatedOn:          "VALIDATED_ON",
	fair4ml.EvaluatedOn:          "EVALUATED_ON",
	fair4ml.FineTunedFrom:        "FINE_TUNED_FROM",
	fair4ml.License:              "HAS_LICENSE",
	fair4ml.Keywords:             "HAS_KEYWORD",
	fair4ml.MLTask:               "HAS_TASK",
	fair4ml.InLanguage:           "IN_LANGUAGE",
	fair4ml.ReferencePublication: "REFERENCE_PUBLICATION",
}

// LabelForKind returns the node label of an entity kind.
func LabelForKind(kind fair4ml.EntityKind) string {
	return ShortName(fair4ml.ClassForKind(kind))
}
