package huggingface

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/zbmed-semtec/mlentory/config"
)

// Extractor produces raw HuggingFace model records for a run.
type Extractor struct {
	client  *HubClient
	scraper *Scraper
	cfg     config.PlatformConfig
	logger  *slog.Logger
}

// NewExtractor creates a HuggingFace extractor.
func NewExtractor(client *HubClient, scraper *Scraper, cfg config.PlatformConfig, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{client: client, scraper: scraper, cfg: cfg, logger: logger}
}

// FetchPrimary fetches the primary model set for the run: either the ids
// listed in models_file_path, or a hub listing honoring num_models,
// offset and update_recent. Models below the information threshold are
// dropped; the result is deduplicated by id and sorted for stable runs.
func (e *Extractor) FetchPrimary(ctx context.Context) ([]RawModel, error) {
	if e.cfg.ModelsFilePath != "" {
		ids, err := readModelIDs(e.cfg.ModelsFilePath)
		if err != nil {
			return nil, err
		}
		return e.FetchSpecificModels(ctx, ids, e.cfg.Threads)
	}

	listed, err := e.client.ListModels(ctx, e.cfg.NumModels, e.cfg.Offset, e.cfg.UpdateRecent)
	if err != nil {
		return nil, fmt.Errorf("failed to list hub models: %w", err)
	}

	models, err := e.hydrate(ctx, listed)
	if err != nil {
		return nil, err
	}

	kept := make([]RawModel, 0, len(models))
	seen := make(map[string]bool, len(models))
	for _, m := range models {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		if !m.Informative() {
			e.logger.Debug("skipping uninformative model", "model", m.ID)
			continue
		}
		kept = append(kept, m)
		if len(kept) == e.cfg.NumModels {
			break
		}
	}
	sortModels(kept)

	e.logger.Info("fetched primary models",
		"listed", len(listed), "kept", len(kept))
	return kept, nil
}

// FetchSpecificModels fetches the given ids with bounded parallelism. A
// failed id yields a stub record rather than disappearing, so linkage
// targets are never silently dropped.
func (e *Extractor) FetchSpecificModels(ctx context.Context, ids []string, threads int) ([]RawModel, error) {
	if threads < 1 {
		threads = 1
	}

	unique := dedupe(ids)
	models := make([]RawModel, len(unique))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(threads)
	for i, id := range unique {
		group.Go(func() error {
			m, err := e.fetchOne(ctx, id)
			if err != nil {
				e.logger.Warn("stubbing model after fetch failure", "model", id, "error", err)
				m = RawModel{ID: id, Stub: true, Error: err.Error()}
			}
			models[i] = m
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	sortModels(models)
	return models, nil
}

func (e *Extractor) fetchOne(ctx context.Context, id string) (RawModel, error) {
	m, err := e.client.GetModel(ctx, id)
	if err != nil {
		return RawModel{}, err
	}
	return e.withCard(ctx, m), nil
}

// hydrate attaches model cards to listed records in parallel. Card
// failures degrade to an empty card, not an error: listings routinely
// contain gated or freshly deleted models.
func (e *Extractor) hydrate(ctx context.Context, listed []RawModel) ([]RawModel, error) {
	threads := e.cfg.Threads
	if threads < 1 {
		threads = 1
	}

	models := make([]RawModel, len(listed))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(threads)
	for i, m := range listed {
		group.Go(func() error {
			models[i] = e.withCard(ctx, m)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return models, nil
}

func (e *Extractor) withCard(ctx context.Context, m RawModel) RawModel {
	if m.Card != "" || m.Gated {
		return m
	}
	card, err := e.client.GetModelCard(ctx, m.ID)
	if err != nil {
		e.logger.Debug("model card unavailable", "model", m.ID, "error", err)
		if e.scraper != nil && e.cfg.EnableScraping {
			if page, serr := e.scraper.Scrape(ctx, m.URL()); serr == nil {
				m.Card = page.Markdown
			}
		}
		return m
	}
	m.Card = card
	return m
}

func sortModels(models []RawModel) {
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// readModelIDs reads one model id per line, skipping blanks and #
// comments.
func readModelIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open models file: %w", err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read models file: %w", err)
	}
	return ids, nil
}
