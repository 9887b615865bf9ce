package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

func validModel() schema.Record {
	r := schema.New(fair4ml.KindMLModel, "huggingface", "a/b")
	r.Set(fair4ml.Name, "a/b", schema.Meta(schema.MethodParsed, 1.0, "modelId"))
	r.Set(fair4ml.URL, "https://huggingface.co/a/b", schema.Meta(schema.MethodParsed, 1.0, "modelId"))
	return r
}

func TestValidateAcceptsWellFormedModel(t *testing.T) {
	v := schema.NewValidator()
	assert.NoError(t, v.Validate(fair4ml.KindMLModel, validModel()))
}

func TestValidateRejectsMissingName(t *testing.T) {
	v := schema.NewValidator()
	r := validModel()
	delete(r, fair4ml.Name)
	err := v.Validate(fair4ml.KindMLModel, r)
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "name")
}

func TestValidateRejectsMalformedIRI(t *testing.T) {
	v := schema.NewValidator()
	r := validModel()
	r[fair4ml.TrainedOn] = []string{"not a url"}
	assert.Error(t, v.Validate(fair4ml.KindMLModel, r))
}

func TestValidateRejectsBadDatetime(t *testing.T) {
	v := schema.NewValidator()
	r := validModel()
	r[fair4ml.DateCreated] = "June 2021"
	assert.Error(t, v.Validate(fair4ml.KindMLModel, r))
}

func TestValidateRejectsDanglingMetadataKey(t *testing.T) {
	v := schema.NewValidator()
	r := validModel()
	r.SetMetadata(fair4ml.Description, schema.Meta(schema.MethodParsed, 1.0, "card"))
	err := v.Validate(fair4ml.KindMLModel, r)
	assert.Error(t, err)
}

func TestValidateRequiresMLentoryIRI(t *testing.T) {
	v := schema.NewValidator()
	r := schema.Record{
		fair4ml.Identifier: []string{"https://huggingface.co/a/b"},
		fair4ml.Name:       "a/b",
	}
	err := v.Validate(fair4ml.KindMLModel, r)
	assert.Error(t, err)
}
