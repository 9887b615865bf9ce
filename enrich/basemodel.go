package enrich

import (
	"context"
	"log/slog"

	"github.com/zbmed-semtec/mlentory/extract/huggingface"
	"github.com/zbmed-semtec/mlentory/identify"
	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// BaseModelClient resolves base-model ids to lightweight model-reference
// records for linkage. Full ancestor metadata is handled by the
// base-model expansion; these records only guarantee that every
// fineTunedFrom target exists in the graph.
type BaseModelClient struct {
	fetcher  identify.ModelFetcher
	platform string
	logger   *slog.Logger
}

// NewBaseModelClient creates a base-model reference client.
func NewBaseModelClient(fetcher identify.ModelFetcher, platform string, logger *slog.Logger) *BaseModelClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &BaseModelClient{fetcher: fetcher, platform: platform, logger: logger}
}

// FetchBaseModels resolves the given model ids, stubbing ids the hub no
// longer serves.
func (b *BaseModelClient) FetchBaseModels(ctx context.Context, ids []string, threads int) ([]schema.Record, error) {
	fetched, err := b.fetcher.FetchSpecificModels(ctx, dedupe(ids), clampThreads(threads))
	if err != nil {
		return nil, err
	}

	records := make([]schema.Record, 0, len(fetched))
	for _, m := range fetched {
		if m.Stub {
			b.logger.Debug("stubbing base model", "model", m.ID, "error", m.Error)
			records = append(records, schema.Stub(fair4ml.KindMLModel, b.platform, m.ID, nil))
			continue
		}
		r := schema.New(fair4ml.KindMLModel, b.platform, m.ID)
		r.AddIdentifier(m.URL())
		r.Set(fair4ml.Name, m.ID, schema.Meta(schema.MethodLinked, 1.0, "modelId"))
		r.Set(fair4ml.URL, m.URL(), schema.Meta(schema.MethodLinked, 1.0, "modelId"))
		if m.Author != "" {
			r.Set(fair4ml.SharedBy, m.Author, schema.Meta(schema.MethodLinked, 1.0, "author"))
		}
		records = append(records, r)
	}
	return records, nil
}

// RawBaseModels exposes the underlying fetch for the ancestry
// expansion, which needs full raw records rather than references.
func (b *BaseModelClient) RawBaseModels(ctx context.Context, ids []string, threads int) ([]huggingface.RawModel, error) {
	return b.fetcher.FetchSpecificModels(ctx, dedupe(ids), clampThreads(threads))
}
