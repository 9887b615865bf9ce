package rdf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zbmed-semtec/mlentory/rdf"
	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

func testModel() schema.Record {
	r := schema.New(fair4ml.KindMLModel, "huggingface", "a/b")
	r.AddIdentifier("https://huggingface.co/a/b")
	r.Set(fair4ml.Name, "a/b", schema.Meta(schema.MethodParsed, 1.0, "modelId"))
	r.Set(fair4ml.URL, "https://huggingface.co/a/b", schema.Meta(schema.MethodParsed, 1.0, "modelId"))
	r.Set(fair4ml.DateCreated, "2021-06-17", schema.Meta(schema.MethodParsed, 1.0, "createdAt"))
	r.Set(fair4ml.TrainedOn, []string{fair4ml.MintIRI(fair4ml.KindDataset, "huggingface", "d1")},
		schema.Meta(schema.MethodLinked, 0.9, "tags"))
	return r
}

func TestSubjectIRIPrefersMLentoryIRI(t *testing.T) {
	r := testModel()
	assert.Equal(t, r.MLentoryIRI(), rdf.SubjectIRI(fair4ml.KindMLModel, r))
}

func TestSubjectIRIFallsBackToValidIRI(t *testing.T) {
	r := schema.Record{fair4ml.Identifier: []string{"https://huggingface.co/a/b"}}
	assert.Equal(t, "https://huggingface.co/a/b", rdf.SubjectIRI(fair4ml.KindMLModel, r))
}

func TestSubjectIRIHashFallbackForMalformedIdentifier(t *testing.T) {
	r := schema.Record{fair4ml.Identifier: []string{"not an iri"}}
	subject := rdf.SubjectIRI(fair4ml.KindMLModel, r)
	assert.True(t, rdf.IsAbsoluteIRI(subject))
	assert.Equal(t, subject, rdf.SubjectIRI(fair4ml.KindMLModel, r))
}

func TestBuildTriplesEmitsTypeAndTypedObjects(t *testing.T) {
	triples := rdf.BuildTriples(fair4ml.KindMLModel, testModel())
	require.NotEmpty(t, triples)

	assert.Equal(t, fair4ml.RDFType, triples[0].Predicate)
	assert.Equal(t, fair4ml.ClassMLModel, triples[0].Object.Value)
	assert.True(t, triples[0].Object.IRI)

	byPredicate := map[string][]rdf.Triple{}
	for _, tr := range triples {
		byPredicate[tr.Predicate] = append(byPredicate[tr.Predicate], tr)
	}

	name := byPredicate[fair4ml.Name][0]
	assert.False(t, name.Object.IRI)
	assert.Equal(t, fair4ml.XSDString, name.Object.Datatype)

	created := byPredicate[fair4ml.DateCreated][0]
	assert.Equal(t, fair4ml.XSDDate, created.Object.Datatype)
	assert.Equal(t, "2021-06-17T00:00:00Z", created.Object.Value)

	trained := byPredicate[fair4ml.TrainedOn][0]
	assert.True(t, trained.Object.IRI)

	// Every triple is (IRI, IRI, IRI-or-typed-literal).
	for _, tr := range triples {
		assert.True(t, rdf.IsAbsoluteIRI(tr.Subject))
		assert.True(t, rdf.IsAbsoluteIRI(tr.Predicate))
		if !tr.Object.IRI {
			assert.NotEmpty(t, tr.Object.Datatype)
		}
	}
}

func TestBuildTriplesSkipsMetadataAndMetrics(t *testing.T) {
	r := testModel()
	r[fair4ml.MetricsKey] = map[string]any{"downloads": 10}
	triples := rdf.BuildTriples(fair4ml.KindMLModel, r)
	for _, tr := range triples {
		assert.NotEqual(t, fair4ml.MetricsKey, tr.Predicate)
		assert.NotEqual(t, fair4ml.ExtractionMetadataKey, tr.Predicate)
	}
}

func TestBuildTriplesOnePerListElement(t *testing.T) {
	r := testModel()
	r[fair4ml.Keywords] = []string{
		fair4ml.MintIRI(fair4ml.KindKeyword, "huggingface", "nlp"),
		fair4ml.MintIRI(fair4ml.KindKeyword, "huggingface", "bert"),
	}
	triples := rdf.BuildTriples(fair4ml.KindMLModel, r)
	count := 0
	for _, tr := range triples {
		if tr.Predicate == fair4ml.Keywords {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "name", rdf.ShortName(fair4ml.Name))
	assert.Equal(t, "trainedOn", rdf.ShortName(fair4ml.TrainedOn))
	assert.Equal(t, "type", rdf.ShortName(fair4ml.RDFType))
}
