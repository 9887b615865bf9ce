package commands

import (
	"context"
	"log/slog"

	"github.com/zbmed-semtec/mlentory/config"
	"github.com/zbmed-semtec/mlentory/extract/bioimage"
	"github.com/zbmed-semtec/mlentory/extract/openml"
	"github.com/zbmed-semtec/mlentory/normalize"
	"github.com/zbmed-semtec/mlentory/pipeline"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// openmlStages builds the OpenML DAG. Runs carry no entity references,
// so the pipeline is extract and normalize only.
func openmlStages(cfg *config.Config, run *pipeline.Run, metrics *pipeline.Metrics, logger *slog.Logger) ([]*pipeline.Stage, error) {
	const platform = "openml"
	pcfg := cfg.Platform(platform)
	extractor := openml.NewExtractor(openml.NewClient(pcfg.BaseURL, logger), pcfg, logger)

	extract := &pipeline.Stage{
		Name: "extract",
		Run: func(ctx context.Context, _ map[string]pipeline.Artifact) (pipeline.Artifact, error) {
			runs, err := extractor.FetchPrimary(ctx)
			if err != nil {
				return pipeline.Artifact{}, err
			}
			path := run.Path(pipeline.TierRaw, platform, "runs_raw.json")
			if err := pipeline.WriteJSON(path, runs); err != nil {
				return pipeline.Artifact{}, err
			}
			metrics.AddRecords("extract", "ok", len(runs))
			return pipeline.Artifact{
				Path:   path,
				Values: map[string]any{"runs": len(runs)},
			}, nil
		},
	}

	normalizeStage := &pipeline.Stage{
		Name:   "normalize",
		Inputs: []string{"extract"},
		Run: func(_ context.Context, inputs map[string]pipeline.Artifact) (pipeline.Artifact, error) {
			var runs []openml.RawRun
			if err := pipeline.ReadJSON(inputs["extract"].Path, &runs); err != nil {
				return pipeline.Artifact{}, err
			}
			normDir, err := run.Dir(pipeline.TierNormalized, platform)
			if err != nil {
				return pipeline.Artifact{}, err
			}

			records := normalize.NewOpenML(logger).MapAll(runs)
			models, err := validateAndWrite(normDir, fair4ml.KindMLModel, records, true, logger)
			if err != nil {
				return pipeline.Artifact{}, err
			}
			return pipeline.Artifact{
				Path:   normDir,
				Values: map[string]any{"models": models},
			}, nil
		},
	}

	return []*pipeline.Stage{extract, normalizeStage}, nil
}

// bioimageStages builds the BioImage Model Zoo DAG.
func bioimageStages(cfg *config.Config, run *pipeline.Run, metrics *pipeline.Metrics, logger *slog.Logger) ([]*pipeline.Stage, error) {
	const platform = "bioimage"
	extractor := bioimage.NewExtractor(cfg.Platform(platform), logger)

	extract := &pipeline.Stage{
		Name: "extract",
		Run: func(ctx context.Context, _ map[string]pipeline.Artifact) (pipeline.Artifact, error) {
			entries, err := extractor.FetchPrimary(ctx)
			if err != nil {
				return pipeline.Artifact{}, err
			}
			path := run.Path(pipeline.TierRaw, platform, "entries_raw.json")
			if err := pipeline.WriteJSON(path, entries); err != nil {
				return pipeline.Artifact{}, err
			}
			metrics.AddRecords("extract", "ok", len(entries))
			return pipeline.Artifact{
				Path:   path,
				Values: map[string]any{"entries": len(entries)},
			}, nil
		},
	}

	normalizeStage := &pipeline.Stage{
		Name:   "normalize",
		Inputs: []string{"extract"},
		Run: func(_ context.Context, inputs map[string]pipeline.Artifact) (pipeline.Artifact, error) {
			var entries []bioimage.RawEntry
			if err := pipeline.ReadJSON(inputs["extract"].Path, &entries); err != nil {
				return pipeline.Artifact{}, err
			}
			normDir, err := run.Dir(pipeline.TierNormalized, platform)
			if err != nil {
				return pipeline.Artifact{}, err
			}

			records := normalize.NewBioImage(logger).MapAll(entries)
			models, err := validateAndWrite(normDir, fair4ml.KindMLModel, records, true, logger)
			if err != nil {
				return pipeline.Artifact{}, err
			}
			return pipeline.Artifact{
				Path:   normDir,
				Values: map[string]any{"models": models},
			}, nil
		},
	}

	return []*pipeline.Stage{extract, normalizeStage}, nil
}
