package commands

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/zbmed-semtec/mlentory/config"
	"github.com/zbmed-semtec/mlentory/enrich"
	"github.com/zbmed-semtec/mlentory/extract/huggingface"
	"github.com/zbmed-semtec/mlentory/identify"
	"github.com/zbmed-semtec/mlentory/normalize"
	"github.com/zbmed-semtec/mlentory/pipeline"
	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// identifiedBatch is the identify-stage artifact: the hydrated model
// set (primaries plus base-model ancestors) and the per-record entity
// references of every kind.
type identifiedBatch struct {
	Models  []huggingface.RawModel `json:"models"`
	Linkage normalize.Linkage      `json:"linkage"`
}

// enrichedSuffix names the per-kind enrichment artifacts.
const enrichedSuffix = "_enriched.json"

// baseRefsFile holds reference records for base models outside the
// expansion horizon.
const baseRefsFile = "mlmodel_refs" + enrichedSuffix

// huggingfaceStages builds the HuggingFace DAG: extract, identify,
// enrich and normalize. Store stages are appended by the caller.
func huggingfaceStages(cfg *config.Config, secrets config.Secrets, run *pipeline.Run, metrics *pipeline.Metrics, logger *slog.Logger) ([]*pipeline.Stage, error) {
	const platform = "huggingface"
	pcfg := cfg.Platform(platform)

	client := huggingface.NewHubClient(pcfg.BaseURL, secrets.HFToken, logger)
	var scraper *huggingface.Scraper
	if pcfg.EnableScraping {
		scraper = huggingface.NewScraper()
	}
	extractor := huggingface.NewExtractor(client, scraper, pcfg, logger)

	refs := cfg.General.RefsDir
	catalog, err := enrich.LoadCatalog(filepath.Join(refs, "keywords.csv"), logger)
	if err != nil {
		logger.Warn("Keyword catalog unavailable, falling back to live lookups", "error", err)
		catalog = nil
	}
	taskCatalog, err := enrich.LoadTaskCatalog(filepath.Join(refs, "hf_tasks.csv"))
	if err != nil {
		logger.Warn("Task catalog unavailable", "error", err)
		taskCatalog = nil
	}

	var cache *enrich.Cache
	if secrets.RedisAddr != "" {
		cache = enrich.NewCache(secrets.RedisAddr, 24*time.Hour, logger)
	}

	keywords := enrich.NewKeywordClient(catalog, cache, "", platform, logger)
	articles := enrich.NewArxivClient("", platform, logger)
	datasets := enrich.NewDatasetClient(pcfg.BaseURL, secrets.HFToken, platform, logger)
	licenses := enrich.NewLicenseClient("", platform, logger)
	languages := enrich.NewLanguageBuilder(platform, logger)
	tasks := enrich.NewTaskBuilder(catalog, platform, logger)
	baseModels := enrich.NewBaseModelClient(extractor, platform, logger)

	threads := pcfg.EnrichmentThreads

	extract := &pipeline.Stage{
		Name: "extract",
		Run: func(ctx context.Context, _ map[string]pipeline.Artifact) (pipeline.Artifact, error) {
			models, err := extractor.FetchPrimary(ctx)
			if err != nil {
				return pipeline.Artifact{}, err
			}
			if _, err := run.Dir(pipeline.TierRaw, platform); err != nil {
				return pipeline.Artifact{}, err
			}
			path := run.Path(pipeline.TierRaw, platform, "models_raw.json")
			if err := pipeline.WriteJSON(path, models); err != nil {
				return pipeline.Artifact{}, err
			}
			metrics.AddRecords("extract", "ok", len(models))
			return pipeline.Artifact{
				Path:   path,
				Values: map[string]any{"models": len(models)},
			}, nil
		},
	}

	identifyStage := &pipeline.Stage{
		Name:   "identify",
		Inputs: []string{"extract"},
		Run: func(ctx context.Context, inputs map[string]pipeline.Artifact) (pipeline.Artifact, error) {
			var models []huggingface.RawModel
			if err := pipeline.ReadJSON(inputs["extract"].Path, &models); err != nil {
				return pipeline.Artifact{}, err
			}

			ancestors, err := identify.ExpandBaseModels(
				ctx, extractor, models, pcfg.BaseModelIterations, pcfg.Threads, logger)
			if err != nil {
				return pipeline.Artifact{}, err
			}

			batch := identifiedBatch{
				Models:  append(models, ancestors...),
				Linkage: buildLinkage(append(models, ancestors...), taskCatalog),
			}
			path := run.Path(pipeline.TierRaw, platform, "models_identified.json")
			if err := pipeline.WriteJSON(path, batch); err != nil {
				return pipeline.Artifact{}, err
			}
			return pipeline.Artifact{
				Path:   path,
				Values: map[string]any{"models": len(batch.Models), "ancestors": len(ancestors)},
			}, nil
		},
	}

	enrichStage := &pipeline.Stage{
		Name:   "enrich",
		Inputs: []string{"identify"},
		Run: func(ctx context.Context, inputs map[string]pipeline.Artifact) (pipeline.Artifact, error) {
			var batch identifiedBatch
			if err := pipeline.ReadJSON(inputs["identify"].Path, &batch); err != nil {
				return pipeline.Artifact{}, err
			}
			rawDir, err := run.Dir(pipeline.TierRaw, platform)
			if err != nil {
				return pipeline.Artifact{}, err
			}

			stubs := 0
			write := func(name string, records []schema.Record, err error) error {
				if err != nil {
					return err
				}
				stubs += enrich.CountStubs(records)
				return schema.WriteFile(filepath.Join(rawDir, name), records)
			}

			kw, err := keywords.FetchKeywords(ctx, aggregate(batch.Linkage.Keywords), threads)
			if err := write("keyword"+enrichedSuffix, kw, err); err != nil {
				return pipeline.Artifact{}, err
			}
			ar, err := articles.FetchArticles(ctx, aggregate(batch.Linkage.Articles))
			if err := write("article"+enrichedSuffix, ar, err); err != nil {
				return pipeline.Artifact{}, err
			}
			ds, err := datasets.FetchDatasets(ctx, aggregate(batch.Linkage.Datasets), threads)
			if err := write("dataset"+enrichedSuffix, ds, err); err != nil {
				return pipeline.Artifact{}, err
			}
			li, err := licenses.FetchLicenses(ctx, aggregate(batch.Linkage.Licenses), threads)
			if err := write("license"+enrichedSuffix, li, err); err != nil {
				return pipeline.Artifact{}, err
			}
			if err := write("language"+enrichedSuffix,
				languages.BuildLanguages(aggregate(batch.Linkage.Languages)), nil); err != nil {
				return pipeline.Artifact{}, err
			}
			if err := write("task"+enrichedSuffix,
				tasks.BuildTasks(aggregate(batch.Linkage.Tasks)), nil); err != nil {
				return pipeline.Artifact{}, err
			}

			// Base models past the expansion horizon only get reference
			// records so fineTunedFrom edges still resolve.
			refs, err := baseModels.FetchBaseModels(ctx, missingBaseRefs(batch), threads)
			if err := write(baseRefsFile, refs, err); err != nil {
				return pipeline.Artifact{}, err
			}

			metrics.AddRecords("enrich", "stubbed", stubs)
			return pipeline.Artifact{
				Path:   rawDir,
				Values: map[string]any{"stubs": stubs},
			}, nil
		},
	}

	normalizeStage := &pipeline.Stage{
		Name:   "normalize",
		Inputs: []string{"identify", "enrich"},
		Run: func(ctx context.Context, inputs map[string]pipeline.Artifact) (pipeline.Artifact, error) {
			var batch identifiedBatch
			if err := pipeline.ReadJSON(inputs["identify"].Path, &batch); err != nil {
				return pipeline.Artifact{}, err
			}
			rawDir := inputs["enrich"].Path
			normDir, err := run.Dir(pipeline.TierNormalized, platform)
			if err != nil {
				return pipeline.Artifact{}, err
			}

			mapper := normalize.NewHuggingFace(logger)
			records := mapper.MapAll(batch.Models)
			ids := make([]string, len(batch.Models))
			for i, m := range batch.Models {
				ids[i] = m.ID
			}
			normalize.MergeAll(records, platform, ids, batch.Linkage)

			if refs, err := schema.ReadFile(filepath.Join(rawDir, baseRefsFile)); err == nil {
				records = append(records, refs...)
			}

			models, err := validateAndWrite(normDir, fair4ml.KindMLModel, records, true, logger)
			if err != nil {
				return pipeline.Artifact{}, err
			}

			for _, kind := range fair4ml.AllKinds {
				if kind == fair4ml.KindMLModel {
					continue
				}
				enriched, err := schema.ReadFile(filepath.Join(rawDir, string(kind)+enrichedSuffix))
				if err != nil {
					continue
				}
				if _, err := validateAndWrite(normDir, kind, enriched, false, logger); err != nil {
					return pipeline.Artifact{}, err
				}
			}

			return pipeline.Artifact{
				Path:   normDir,
				Values: map[string]any{"models": models},
			}, nil
		},
	}

	return []*pipeline.Stage{extract, identifyStage, enrichStage, normalizeStage}, nil
}

// buildLinkage runs every identifier over the model batch and collects
// the per-record references by kind.
func buildLinkage(models []huggingface.RawModel, taskCatalog map[string]string) normalize.Linkage {
	var l normalize.Linkage
	for _, identifier := range identify.All(taskCatalog) {
		per := identifier.IdentifyPerRecord(models)
		switch identifier.Kind() {
		case fair4ml.KindDataset:
			l.Datasets = per
		case fair4ml.KindArticle:
			l.Articles = per
		case fair4ml.KindMLModel:
			l.BaseModels = per
		case fair4ml.KindKeyword:
			l.Keywords = per
		case fair4ml.KindLicense:
			l.Licenses = per
		case fair4ml.KindLanguage:
			l.Languages = per
		case fair4ml.KindTask:
			l.Tasks = per
		}
	}
	return l
}

// aggregate unions per-record references into one sorted id list, so
// enrichment input order is stable across runs.
func aggregate(per map[string][]string) []string {
	var all []string
	for _, refs := range per {
		all = append(all, refs...)
	}
	sort.Strings(all)
	return all
}

// missingBaseRefs returns base-model references that no fetched model
// covers.
func missingBaseRefs(batch identifiedBatch) []string {
	known := make(map[string]bool, len(batch.Models))
	for _, m := range batch.Models {
		known[m.ID] = true
	}
	var missing []string
	for _, refs := range batch.Linkage.BaseModels {
		for _, ref := range refs {
			if !known[ref] {
				known[ref] = true
				missing = append(missing, ref)
			}
		}
	}
	return missing
}
