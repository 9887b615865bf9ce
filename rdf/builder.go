package rdf

import (
	"fmt"

	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// SubjectIRI selects the subject for a record: the MLentory IRI when
// present, otherwise the first syntactically valid IRI among the
// identifiers, otherwise a hash-derived fallback.
func SubjectIRI(kind fair4ml.EntityKind, r schema.Record) string {
	if iri := r.MLentoryIRI(); iri != "" {
		return iri
	}
	ids := r.Identifiers()
	for _, id := range ids {
		if IsAbsoluteIRI(id) {
			return id
		}
	}
	raw := fmt.Sprintf("%v", ids)
	if len(ids) > 0 {
		raw = ids[0]
	}
	return fair4ml.FallbackIRI(kind, raw)
}

// BuildTriples translates one normalized record into triples. Lists emit
// one triple per element; values that parse as absolute IRIs become IRI
// objects, temporal predicates become xsd:dateTime literals, everything
// else xsd:string.
func BuildTriples(kind fair4ml.EntityKind, r schema.Record) []Triple {
	subject := SubjectIRI(kind, r)

	triples := []Triple{{
		Subject:   subject,
		Predicate: fair4ml.RDFType,
		Object:    IRIObject(fair4ml.ClassForKind(kind)),
	}}

	for _, predicate := range r.Predicates() {
		if predicate == fair4ml.MetricsKey || predicate == schema.EnrichedKey {
			continue
		}
		for _, value := range r.Strings(predicate) {
			if value == "" {
				continue
			}
			triples = append(triples, Triple{
				Subject:   subject,
				Predicate: predicate,
				Object:    objectFor(predicate, value),
			})
		}
	}

	return triples
}

func objectFor(predicate, value string) Object {
	if IsAbsoluteIRI(value) {
		return IRIObject(value)
	}
	if fair4ml.IsTemporal(predicate) {
		if normalized, err := schema.NormalizeDatetime(value); err == nil {
			return Literal(normalized, fair4ml.XSDDate)
		}
	}
	return Literal(value, fair4ml.XSDString)
}
