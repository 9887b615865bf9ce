package normalize

import (
	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// BuildTranslationMap indexes records of every kind by MLentory IRI,
// mapping each to its display name. The document indexer uses it to
// render linkage IRIs as human-readable facet values.
func BuildTranslationMap(batches ...[]schema.Record) map[string]string {
	translation := map[string]string{}
	for _, batch := range batches {
		for _, r := range batch {
			iri := r.MLentoryIRI()
			if iri == "" {
				continue
			}
			if name := r.String(fair4ml.Name); name != "" {
				translation[iri] = name
			}
		}
	}
	return translation
}
