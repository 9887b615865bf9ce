package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zbmed-semtec/mlentory/config"
	"github.com/zbmed-semtec/mlentory/index"
	"github.com/zbmed-semtec/mlentory/normalize"
	"github.com/zbmed-semtec/mlentory/pipeline"
	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// kindFile returns the normalized artifact path of one entity kind.
func kindFile(normDir string, kind fair4ml.EntityKind) string {
	return filepath.Join(normDir, string(kind)+".json")
}

// readKindBatches loads every normalized batch present in a run folder.
func readKindBatches(normDir string) (map[fair4ml.EntityKind][]schema.Record, error) {
	batches := make(map[fair4ml.EntityKind][]schema.Record)
	for _, kind := range fair4ml.AllKinds {
		path := kindFile(normDir, kind)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		records, err := schema.ReadFile(path)
		if err != nil {
			return nil, err
		}
		batches[kind] = records
	}
	return batches, nil
}

// loadStage persists every normalized batch into the triple store and
// exports per-kind Turtle files with load reports alongside.
func loadStage(st *stores, run *pipeline.Run, platform string, logger *slog.Logger) *pipeline.Stage {
	return &pipeline.Stage{
		Name:   "load",
		Inputs: []string{"normalize"},
		Run: func(ctx context.Context, inputs map[string]pipeline.Artifact) (pipeline.Artifact, error) {
			normDir := inputs["normalize"].Path
			rdfDir, err := run.Dir(pipeline.TierRDF, platform)
			if err != nil {
				return pipeline.Artifact{}, err
			}

			var records, triples int
			for _, kind := range fair4ml.AllKinds {
				jsonPath := kindFile(normDir, kind)
				if _, err := os.Stat(jsonPath); err != nil {
					continue
				}
				ttlPath := filepath.Join(rdfDir, string(kind)+".ttl")
				report, err := st.loader.PersistAndExport(ctx, kind, jsonPath, ttlPath)
				if err != nil {
					return pipeline.Artifact{}, fmt.Errorf("failed to load %s records: %w", kind, err)
				}
				reportPath := filepath.Join(rdfDir, string(kind)+"_load_report.json")
				if err := pipeline.WriteJSON(reportPath, report); err != nil {
					return pipeline.Artifact{}, err
				}
				records += report.Records
				triples += report.Triples
			}

			logger.Info("Graph load finished",
				"platform", platform, "records", records, "triples", triples)
			return pipeline.Artifact{
				Path:   rdfDir,
				Values: map[string]any{"records": records, "triples": triples},
			}, nil
		},
	}
}

// temporalStage records per-predicate snapshots of the model batch so
// metadata history stays reconstructible.
func temporalStage(st *stores, run *pipeline.Run, platform string, logger *slog.Logger) *pipeline.Stage {
	return &pipeline.Stage{
		Name:   "temporal",
		Inputs: []string{"normalize"},
		Run: func(ctx context.Context, inputs map[string]pipeline.Artifact) (pipeline.Artifact, error) {
			models, err := schema.ReadFile(kindFile(inputs["normalize"].Path, fair4ml.KindMLModel))
			if err != nil {
				return pipeline.Artifact{}, err
			}

			stats, err := st.temporal.WriteMetadataBatch(ctx, models, run.StartedAt)
			if err != nil {
				return pipeline.Artifact{}, err
			}

			rdfDir, err := run.Dir(pipeline.TierRDF, platform)
			if err != nil {
				return pipeline.Artifact{}, err
			}
			reportPath := filepath.Join(rdfDir, "metadata_export_report.json")
			if err := pipeline.WriteJSON(reportPath, stats); err != nil {
				return pipeline.Artifact{}, err
			}

			logger.Info("Temporal metadata written",
				"platform", platform,
				"models", stats.Models,
				"created", stats.SnapshotsCreated,
				"closed", stats.SnapshotsClosed)
			return pipeline.Artifact{
				Path:   reportPath,
				Values: map[string]any{"models": stats.Models, "created": stats.SnapshotsCreated},
			}, nil
		},
	}
}

// indexStage writes the model batch into the platform's document index,
// translating entity IRIs to display names first.
func indexStage(st *stores, cfg *config.Config, run *pipeline.Run, platform string, logger *slog.Logger) *pipeline.Stage {
	return &pipeline.Stage{
		Name:   "index",
		Inputs: []string{"normalize"},
		Run: func(ctx context.Context, inputs map[string]pipeline.Artifact) (pipeline.Artifact, error) {
			normDir := inputs["normalize"].Path
			batches, err := readKindBatches(normDir)
			if err != nil {
				return pipeline.Artifact{}, err
			}
			models := batches[fair4ml.KindMLModel]

			all := make([][]schema.Record, 0, len(batches))
			for _, batch := range batches {
				all = append(all, batch)
			}
			translation := normalize.BuildTranslationMap(all...)

			name := index.IndexName(platform)
			if err := st.indexer.EnsureIndex(ctx, name); err != nil {
				return pipeline.Artifact{}, err
			}
			if cfg.CleanElasticsearchIndex {
				if err := st.indexer.CleanIndex(ctx, name); err != nil {
					return pipeline.Artifact{}, err
				}
			}

			indexed, failed, err := st.indexer.BulkIndex(ctx, name, models, translation, platform)
			if err != nil {
				return pipeline.Artifact{}, err
			}

			rdfDir, err := run.Dir(pipeline.TierRDF, platform)
			if err != nil {
				return pipeline.Artifact{}, err
			}
			reportPath := filepath.Join(rdfDir, "elasticsearch_report.json")
			report := map[string]any{"index": name, "indexed": indexed, "failed": failed}
			if err := pipeline.WriteJSON(reportPath, report); err != nil {
				return pipeline.Artifact{}, err
			}

			logger.Info("Index updated",
				"platform", platform, "index", name, "indexed", indexed, "failed", failed)
			return pipeline.Artifact{
				Path:   reportPath,
				Values: map[string]any{"indexed": indexed, "failed": failed},
			}, nil
		},
	}
}

// validateAndWrite validates one batch and persists the survivors plus
// any diverted-record report. Entity kinds tolerate an empty result;
// the model batch must not come out empty.
func validateAndWrite(
	normDir string,
	kind fair4ml.EntityKind,
	records []schema.Record,
	required bool,
	logger *slog.Logger,
) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	valid, diverted, err := normalize.ValidateBatch(kind, records, logger)
	if len(diverted) > 0 {
		if _, werr := normalize.WriteErrors(normDir, kind, diverted); werr != nil {
			return 0, werr
		}
	}
	if err != nil {
		if required {
			return 0, err
		}
		logger.Warn("Batch dropped by validation", "kind", kind, "error", err)
		return 0, nil
	}
	if err := schema.WriteFile(kindFile(normDir, kind), valid); err != nil {
		return 0, err
	}
	return len(valid), nil
}
