package normalize

import (
	"log/slog"
	"strconv"

	"github.com/zbmed-semtec/mlentory/extract/huggingface"
	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// HuggingFace normalizes raw hub models to the FAIR record form.
type HuggingFace struct {
	logger *slog.Logger
}

// NewHuggingFace creates the hub normalizer.
func NewHuggingFace(logger *slog.Logger) *HuggingFace {
	if logger == nil {
		logger = slog.Default()
	}
	return &HuggingFace{logger: logger}
}

// MapBasic translates the core identification, temporal, authorship and
// URL fields of one raw hub model. Linkage predicates come later via
// Merge.
func (h *HuggingFace) MapBasic(raw huggingface.RawModel) schema.Record {
	if raw.Stub {
		r := schema.Stub(fair4ml.KindMLModel, huggingface.Platform, raw.ID, nil)
		if raw.Error != "" {
			r.SetMetadata(fair4ml.Name, schema.FieldMetadata{
				Method: schema.MethodStubbed, Error: raw.Error,
			})
		}
		r.Set(fair4ml.URL, raw.URL(), schema.Meta(schema.MethodStubbed, 0, "modelId"))
		return r
	}

	r := schema.New(fair4ml.KindMLModel, huggingface.Platform, raw.ID)
	r.AddIdentifier(raw.URL())
	r.Set(fair4ml.Name, raw.ID, schema.Meta(schema.MethodParsed, 1.0, "modelId"))
	r.Set(fair4ml.URL, raw.URL(), schema.Meta(schema.MethodParsed, 1.0, "modelId"))
	if raw.Author != "" {
		r.Set(fair4ml.SharedBy, raw.Author, schema.Meta(schema.MethodParsed, 1.0, "author"))
	}
	if raw.LibraryName != "" {
		r.Set(fair4ml.ModelCategory, raw.LibraryName, schema.Meta(schema.MethodParsed, 0.8, "library_name"))
	}

	if err := setDatetime(r, fair4ml.DateCreated, raw.CreatedAt, "createdAt"); err != nil {
		h.logger.Debug("skipping unparseable creation date", "model", raw.ID, "error", err)
	}
	if err := setDatetime(r, fair4ml.DateModified, raw.LastModified, "lastModified"); err != nil {
		h.logger.Debug("skipping unparseable modification date", "model", raw.ID, "error", err)
	}

	if raw.Card != "" {
		r.Set(fair4ml.Readme, raw.URL()+"/blob/main/README.md", schema.Meta(schema.MethodParsed, 1.0, "card"))
		if description := firstParagraph(raw.Card); description != "" {
			r.Set(fair4ml.Description, description, schema.Meta(schema.MethodParsed, 0.8, "card"))
		}
		applyCardSections(r, raw.Card)
	}
	r.Set(fair4ml.DiscussionURL, raw.URL()+"/discussions", schema.Meta(schema.MethodGenerated, 1.0, "modelId"))

	r[fair4ml.MetricsKey] = map[string]string{
		"downloads": strconv.Itoa(raw.Downloads),
		"likes":     strconv.Itoa(raw.Likes),
	}
	return r
}

// MapAll maps a raw batch, one record per model.
func (h *HuggingFace) MapAll(raw []huggingface.RawModel) []schema.Record {
	records := make([]schema.Record, 0, len(raw))
	for _, m := range raw {
		records = append(records, h.MapBasic(m))
	}
	return records
}
