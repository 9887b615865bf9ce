package normalize

import (
	"log/slog"

	"github.com/zbmed-semtec/mlentory/extract/bioimage"
	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// BioImage normalizes raw catalog entries to the FAIR record form.
type BioImage struct {
	logger *slog.Logger
}

// NewBioImage creates the catalog normalizer.
func NewBioImage(logger *slog.Logger) *BioImage {
	if logger == nil {
		logger = slog.Default()
	}
	return &BioImage{logger: logger}
}

// MapBasic translates the core fields of one raw catalog entry.
func (b *BioImage) MapBasic(raw bioimage.RawEntry) schema.Record {
	if raw.Stub {
		r := schema.Stub(fair4ml.KindMLModel, bioimage.Platform, raw.ID, nil)
		if raw.Error != "" {
			r.SetMetadata(fair4ml.Name, schema.FieldMetadata{
				Method: schema.MethodStubbed, Error: raw.Error,
			})
		}
		return r
	}

	r := schema.New(fair4ml.KindMLModel, bioimage.Platform, raw.ID)
	r.AddIdentifier(raw.URL())
	if raw.DOI != "" {
		r.AddIdentifier("https://doi.org/" + raw.DOI)
	}
	r.Set(fair4ml.Name, raw.Name, schema.Meta(schema.MethodParsed, 1.0, "name"))
	r.Set(fair4ml.URL, raw.URL(), schema.Meta(schema.MethodParsed, 1.0, "id"))
	if raw.Description != "" {
		r.Set(fair4ml.Description, raw.Description, schema.Meta(schema.MethodParsed, 1.0, "description"))
	}
	if raw.Nickname != "" {
		r.Set(fair4ml.AlternateName, raw.Nickname, schema.Meta(schema.MethodParsed, 1.0, "nickname"))
	}
	if len(raw.Authors) > 0 {
		authors := make([]string, 0, len(raw.Authors))
		for _, author := range raw.Authors {
			if author.Name != "" {
				authors = append(authors, author.Name)
			}
		}
		r.Set(fair4ml.Author, authors, schema.Meta(schema.MethodParsed, 1.0, "authors"))
	}
	if err := setDatetime(r, fair4ml.DateCreated, raw.Created, "created"); err != nil {
		b.logger.Debug("skipping unparseable creation date", "entry", raw.ID, "error", err)
	}
	if raw.RDFSource != "" {
		r.Set(fair4ml.ArchivedAt, raw.RDFSource, schema.Meta(schema.MethodParsed, 1.0, "rdf_source"))
	}
	return r
}

// MapAll maps a raw batch, one record per entry.
func (b *BioImage) MapAll(raw []bioimage.RawEntry) []schema.Record {
	records := make([]schema.Record, 0, len(raw))
	for _, entry := range raw {
		records = append(records, b.MapBasic(entry))
	}
	return records
}
