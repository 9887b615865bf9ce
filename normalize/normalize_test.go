package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zbmed-semtec/mlentory/extract/bioimage"
	"github.com/zbmed-semtec/mlentory/extract/huggingface"
	"github.com/zbmed-semtec/mlentory/extract/openml"
	"github.com/zbmed-semtec/mlentory/pipeline"
	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

const bertCard = `---
license: apache-2.0
---
# BERT base

BERT is a transformers model pretrained on a large corpus of English data.

## Intended use

You can use the raw model for masked language modeling.

## Limitations

The model can have biased predictions.`

func rawBert() huggingface.RawModel {
	return huggingface.RawModel{
		ID:           "google/bert",
		Author:       "google",
		CreatedAt:    "2022-03-02T23:29:04.000Z",
		LastModified: "2024-02-19",
		Downloads:    100,
		Likes:        5,
		PipelineTag:  "fill-mask",
		LibraryName:  "transformers",
		Card:         bertCard,
	}
}

func TestHuggingFaceMapBasic(t *testing.T) {
	r := NewHuggingFace(nil).MapBasic(rawBert())

	assert.Equal(t, "google/bert", r.String(fair4ml.Name))
	assert.Equal(t, "https://huggingface.co/google/bert", r.String(fair4ml.URL))
	assert.Contains(t, r.Identifiers(), "https://huggingface.co/google/bert")
	assert.NotEmpty(t, r.MLentoryIRI())
	assert.Equal(t, "google", r.String(fair4ml.SharedBy))
	assert.Equal(t, "2022-03-02T23:29:04Z", r.String(fair4ml.DateCreated))
	assert.Equal(t, "2024-02-19T00:00:00Z", r.String(fair4ml.DateModified))
	assert.Equal(t, "BERT is a transformers model pretrained on a large corpus of English data.",
		r.String(fair4ml.Description))
	assert.Contains(t, r.String(fair4ml.IntendedUse), "masked language modeling")
	assert.Contains(t, r.String(fair4ml.Limitations), "biased predictions")

	metrics, ok := r[fair4ml.MetricsKey].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "100", metrics["downloads"])
}

func TestHuggingFaceMapBasicStub(t *testing.T) {
	r := NewHuggingFace(nil).MapBasic(huggingface.RawModel{
		ID: "gone/model", Stub: true, Error: "hub returned status 404",
	})

	assert.False(t, r.Enriched())
	assert.Equal(t, "gone/model", r.String(fair4ml.Name))
	assert.NotEmpty(t, r.MLentoryIRI())
	assert.Equal(t, "hub returned status 404", r.Metadata()[fair4ml.Name].Error)
}

func TestOpenMLMapBasic(t *testing.T) {
	r := NewOpenML(nil).MapBasic(openml.RawRun{
		RunID: 42, TaskID: 7, FlowID: 11,
		FlowName: "weka.J48", Uploader: "jan",
		UploadTime: "2019-05-01 10:00:00",
		TaskType:   "Supervised Classification",
	})

	assert.Equal(t, "weka.J48", r.String(fair4ml.Name))
	assert.Equal(t, "https://www.openml.org/r/42", r.String(fair4ml.URL))
	assert.Equal(t, "2019-05-01T10:00:00Z", r.String(fair4ml.DateCreated))
	assert.Equal(t, "Supervised Classification", r.String(fair4ml.ModelCategory))
}

func TestBioImageMapBasic(t *testing.T) {
	r := NewBioImage(nil).MapBasic(bioimage.RawEntry{
		ID: "ilastik/pixel", Type: "model",
		Name: "Pixel Classifier", Description: "Semantic segmentation.",
		Authors: []bioimage.Author{{Name: "Ada"}},
		DOI:     "10.5281/zenodo.0000001",
	})

	assert.Equal(t, "Pixel Classifier", r.String(fair4ml.Name))
	assert.Contains(t, r.Identifiers(), "https://doi.org/10.5281/zenodo.0000001")
	assert.Equal(t, []string{"Ada"}, r.Strings(fair4ml.Author))
}

func TestMergeLinkage(t *testing.T) {
	r := NewHuggingFace(nil).MapBasic(rawBert())
	linkage := Linkage{
		Datasets:   map[string][]string{"google/bert": {"bookcorpus", "wikipedia"}},
		Articles:   map[string][]string{"google/bert": {"1810.04805"}},
		BaseModels: map[string][]string{},
		Licenses:   map[string][]string{"google/bert": {"apache-2.0", "mit"}},
		Languages:  map[string][]string{"google/bert": {"en"}},
		Tasks:      map[string][]string{"google/bert": {"fill-mask"}},
	}
	Merge(r, huggingface.Platform, "google/bert", linkage)

	wantDataset := fair4ml.MintIRI(fair4ml.KindDataset, huggingface.Platform, "bookcorpus")
	assert.Contains(t, r.Strings(fair4ml.TrainedOn), wantDataset)
	assert.Equal(t, r.Strings(fair4ml.TrainedOn), r.Strings(fair4ml.TestedOn))
	assert.Equal(t, r.Strings(fair4ml.TrainedOn), r.Strings(fair4ml.EvaluatedOn))

	wantArticle := fair4ml.MintIRI(fair4ml.KindArticle, huggingface.Platform, "1810.04805")
	assert.Equal(t, []string{wantArticle}, r.Strings(fair4ml.ReferencePublication))

	// single-valued, first wins
	wantLicense := fair4ml.MintIRI(fair4ml.KindLicense, huggingface.Platform, "apache-2.0")
	assert.Equal(t, wantLicense, r.String(fair4ml.License))

	assert.Empty(t, r.Strings(fair4ml.FineTunedFrom))
}

func TestValidateBatchDivertsInvalid(t *testing.T) {
	good := NewHuggingFace(nil).MapBasic(rawBert())
	bad := schema.Record{}

	valid, diverted, err := ValidateBatch(fair4ml.KindMLModel, []schema.Record{good, bad}, nil)
	require.NoError(t, err)
	assert.Len(t, valid, 1)
	require.Len(t, diverted, 1)
	assert.Equal(t, "identifier list is empty", diverted[0].Reason)
}

func TestValidateBatchFailsWhenNothingSurvives(t *testing.T) {
	_, diverted, err := ValidateBatch(fair4ml.KindMLModel, []schema.Record{{}, {}}, nil)
	require.ErrorIs(t, err, pipeline.ErrEmptyOutput)
	assert.Len(t, diverted, 2)
}

func TestWriteErrors(t *testing.T) {
	dir := t.TempDir()
	_, diverted, err := ValidateBatch(fair4ml.KindMLModel, []schema.Record{{}}, nil)
	require.Error(t, err)

	path, err := WriteErrors(dir, fair4ml.KindMLModel, diverted)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mlmodel_transformation_errors.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "identifier list is empty")

	none, err := WriteErrors(dir, fair4ml.KindDataset, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBuildTranslationMap(t *testing.T) {
	model := NewHuggingFace(nil).MapBasic(rawBert())
	dataset := schema.New(fair4ml.KindDataset, huggingface.Platform, "bookcorpus")
	dataset.Set(fair4ml.Name, "BookCorpus", schema.Meta(schema.MethodAPI, 1.0, "name"))

	translation := BuildTranslationMap([]schema.Record{model}, []schema.Record{dataset})
	assert.Equal(t, "BookCorpus", translation[dataset.MLentoryIRI()])
	assert.Equal(t, "google/bert", translation[model.MLentoryIRI()])
}
