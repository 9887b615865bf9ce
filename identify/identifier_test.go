package identify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zbmed-semtec/mlentory/extract/huggingface"
)

func sample() []huggingface.RawModel {
	return []huggingface.RawModel{
		{
			ID:          "org/bert",
			Tags:        []string{"dataset:squad", "arxiv:1810.04805", "license:apache-2.0", "en", "transformers", "fill-mask"},
			PipelineTag: "fill-mask",
			LibraryName: "transformers",
			Card:        "Introduced in arXiv:1810.04805v2 and evaluated on GLUE.",
			CardData: huggingface.CardData{
				License:   "apache-2.0",
				Datasets:  []string{"bookcorpus"},
				Languages: []string{"en"},
			},
		},
		{
			ID:   "org/distil",
			Tags: []string{"base_model:org/bert", "dataset:squad", "a tag that is far too long to keep"},
			Card: "See https://arxiv.org/abs/1910.01108 for details.",
		},
	}
}

func TestDatasetIdentifier(t *testing.T) {
	id := NewDatasetIdentifier()
	assert.Equal(t, []string{"bookcorpus", "squad"}, id.Identify(sample()))

	per := id.IdentifyPerRecord(sample())
	assert.Equal(t, []string{"bookcorpus", "squad"}, per["org/bert"])
	assert.Equal(t, []string{"squad"}, per["org/distil"])
}

func TestArticleIdentifierNormalizesVersions(t *testing.T) {
	id := NewArticleIdentifier()
	assert.Equal(t, []string{"1810.04805", "1910.01108"}, id.Identify(sample()))
}

func TestArticleIdentifierIgnoresBareNumbers(t *testing.T) {
	id := NewArticleIdentifier()
	models := []huggingface.RawModel{{ID: "a/b", Card: "trained for 1000.5 hours on 2048.1024 TPUs"}}
	assert.Empty(t, id.Identify(models))
}

func TestBaseModelIdentifier(t *testing.T) {
	id := NewBaseModelIdentifier()
	per := id.IdentifyPerRecord(sample())
	assert.Empty(t, per["org/bert"])
	assert.Equal(t, []string{"org/bert"}, per["org/distil"])
}

func TestKeywordIdentifierFiltersReservedAndLong(t *testing.T) {
	id := NewKeywordIdentifier()
	got := id.Identify(sample())
	assert.Equal(t, []string{"fill-mask", "transformers"}, got)
}

func TestLicenseIdentifier(t *testing.T) {
	id := NewLicenseIdentifier()
	assert.Equal(t, []string{"apache-2.0"}, id.Identify(sample()))
}

func TestLanguageIdentifierValidatesISO639(t *testing.T) {
	id := NewLanguageIdentifier()
	models := []huggingface.RawModel{{
		ID:       "a/b",
		Tags:     []string{"en", "De", "transformers", "zz"},
		CardData: huggingface.CardData{Languages: []string{"fr"}},
	}}
	assert.Equal(t, []string{"de", "en", "fr"}, id.Identify(models))
}

func TestTaskIdentifierUsesCatalog(t *testing.T) {
	catalog := map[string]string{
		"fill-mask":       "Masked Language Modeling",
		"token-classification": "Token Classification",
	}
	id := NewTaskIdentifier(catalog)
	models := []huggingface.RawModel{{
		ID:          "a/b",
		PipelineTag: "fill-mask",
		Tags:        []string{"token-classification", "not-a-task"},
	}}
	assert.Equal(t, []string{"Masked Language Modeling", "Token Classification"}, id.Identify(models))

	bare := NewTaskIdentifier(nil)
	assert.Equal(t, []string{"fill-mask"}, bare.Identify(models))
}

type fakeFetcher struct {
	byID  map[string]huggingface.RawModel
	calls [][]string
}

func (f *fakeFetcher) FetchSpecificModels(_ context.Context, ids []string, _ int) ([]huggingface.RawModel, error) {
	f.calls = append(f.calls, ids)
	out := make([]huggingface.RawModel, 0, len(ids))
	for _, id := range ids {
		if m, ok := f.byID[id]; ok {
			out = append(out, m)
		} else {
			out = append(out, huggingface.RawModel{ID: id, Stub: true, Error: "not found"})
		}
	}
	return out, nil
}

func TestExpandBaseModelsWalksAncestry(t *testing.T) {
	fetcher := &fakeFetcher{byID: map[string]huggingface.RawModel{
		"org/bert": {ID: "org/bert", Tags: []string{"base_model:org/roberta"}},
		"org/roberta": {ID: "org/roberta"},
	}}
	start := []huggingface.RawModel{{ID: "org/distil", Tags: []string{"base_model:org/bert"}}}

	ancestors, err := ExpandBaseModels(context.Background(), fetcher, start, 5, 2, nil)
	require.NoError(t, err)

	require.Len(t, ancestors, 2)
	assert.Equal(t, "org/bert", ancestors[0].ID)
	assert.Equal(t, "org/roberta", ancestors[1].ID)
	// third iteration finds no new ids and stops
	assert.Len(t, fetcher.calls, 2)
}

func TestExpandBaseModelsHonorsIterationCap(t *testing.T) {
	fetcher := &fakeFetcher{byID: map[string]huggingface.RawModel{
		"a/1": {ID: "a/1", Tags: []string{"base_model:a/2"}},
		"a/2": {ID: "a/2", Tags: []string{"base_model:a/3"}},
		"a/3": {ID: "a/3"},
	}}
	start := []huggingface.RawModel{{ID: "a/0", Tags: []string{"base_model:a/1"}}}

	ancestors, err := ExpandBaseModels(context.Background(), fetcher, start, 1, 2, nil)
	require.NoError(t, err)
	require.Len(t, ancestors, 1)
	assert.Equal(t, "a/1", ancestors[0].ID)
}
