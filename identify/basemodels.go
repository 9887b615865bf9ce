package identify

import (
	"context"
	"log/slog"

	"github.com/zbmed-semtec/mlentory/extract/huggingface"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// NewBaseModelIdentifier finds ancestor-model references: tags with the
// base_model: prefix plus the card front matter base_model field.
func NewBaseModelIdentifier() Identifier {
	return kindIdentifier{
		kind: fair4ml.KindMLModel,
		extract: func(m huggingface.RawModel) []string {
			refs := tagValues(m.Tags, PrefixBaseModel)
			refs = append(refs, m.CardData.BaseModel...)
			return refs
		},
	}
}

// ModelFetcher fetches model records by id, stubbing on failure.
type ModelFetcher interface {
	FetchSpecificModels(ctx context.Context, ids []string, threads int) ([]huggingface.RawModel, error)
}

// ExpandBaseModels walks the base-model ancestry of the given models.
// Each iteration identifies the base models of the current frontier,
// diffs against everything already fetched, and fetches the delta.
// It stops when an iteration finds no new ids or the iteration cap is
// hit, and returns only the newly fetched ancestor records.
func ExpandBaseModels(ctx context.Context, fetcher ModelFetcher, models []huggingface.RawModel, iterations, threads int, logger *slog.Logger) ([]huggingface.RawModel, error) {
	if logger == nil {
		logger = slog.Default()
	}
	identifier := NewBaseModelIdentifier()

	seen := make(map[string]bool, len(models))
	for _, m := range models {
		seen[m.ID] = true
	}

	var ancestors []huggingface.RawModel
	frontier := models
	for i := 0; i < iterations; i++ {
		var delta []string
		for _, ref := range identifier.Identify(frontier) {
			if !seen[ref] {
				seen[ref] = true
				delta = append(delta, ref)
			}
		}
		if len(delta) == 0 {
			break
		}

		fetched, err := fetcher.FetchSpecificModels(ctx, delta, threads)
		if err != nil {
			return nil, err
		}
		logger.Info("expanded base models", "iteration", i+1, "new", len(fetched))
		ancestors = append(ancestors, fetched...)
		frontier = fetched
	}
	return ancestors, nil
}
