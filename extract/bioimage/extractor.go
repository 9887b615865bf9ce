// Package bioimage extracts model metadata from the BioImage Model Zoo
// community catalog.
package bioimage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/zbmed-semtec/mlentory/config"
)

// Platform is the platform name used in run folders and minted IRIs.
const Platform = "bioimage"

// DefaultBaseURL serves the published collection document.
const DefaultBaseURL = "https://bioimage-io.github.io/collection-bioimage-io/collection.json"

// RawEntry is one catalog entry. The zoo publishes models, applications
// and notebooks in one collection; only type "model" is extracted.
type RawEntry struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Nickname    string   `json:"nickname,omitempty"`
	License     string   `json:"license,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Authors     []Author `json:"authors,omitempty"`
	Created     string   `json:"created,omitempty"`
	DOI         string   `json:"doi,omitempty"`
	RDFSource   string   `json:"rdf_source,omitempty"`

	Stub  bool   `json:"stub,omitempty"`
	Error string `json:"error,omitempty"`
}

// Author is a catalog entry author.
type Author struct {
	Name        string `json:"name"`
	Affiliation string `json:"affiliation,omitempty"`
	ORCID       string `json:"orcid,omitempty"`
}

// URL returns the zoo page of the entry.
func (e RawEntry) URL() string {
	return "https://bioimage.io/#/?id=" + e.ID
}

// Informative reports whether the entry carries enough metadata to be
// worth normalizing.
func (e RawEntry) Informative() bool {
	if e.Stub {
		return true
	}
	return e.Name != "" && e.Description != ""
}

type collection struct {
	Collection []RawEntry `json:"collection"`
}

// Extractor fetches the collection document and filters it to model
// entries under the configured parent.
type Extractor struct {
	baseURL  string
	parentID string
	cfg      config.PlatformConfig
	http     *http.Client
	logger   *slog.Logger
}

// NewExtractor creates a BioImage Model Zoo extractor. The catalog URL
// and parent collection come from the platform config (base_url,
// parent_id) with public defaults.
func NewExtractor(cfg config.PlatformConfig, logger *slog.Logger) *Extractor {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		baseURL:  baseURL,
		parentID: cfg.ParentID,
		cfg:      cfg,
		http:     &http.Client{Timeout: config.HTTPTimeout},
		logger:   logger,
	}
}

// FetchPrimary downloads the collection and returns its model entries,
// honoring num_models and offset, deduplicated by id and filtered by
// the information threshold.
func (e *Extractor) FetchPrimary(ctx context.Context) ([]RawEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build collection request: %w", err)
	}
	resp, err := e.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("collection request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("collection returned status %d", resp.StatusCode)
	}

	var doc collection
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode collection: %w", err)
	}

	entries := e.filter(doc.Collection)
	if e.cfg.Offset > 0 {
		if e.cfg.Offset >= len(entries) {
			entries = nil
		} else {
			entries = entries[e.cfg.Offset:]
		}
	}
	if e.cfg.NumModels > 0 && len(entries) > e.cfg.NumModels {
		entries = entries[:e.cfg.NumModels]
	}

	e.logger.Info("fetched catalog entries",
		"collection", len(doc.Collection), "kept", len(entries))
	return entries, nil
}

// FetchSpecificEntries returns the requested ids from the collection,
// emitting a stub for each id not present.
func (e *Extractor) FetchSpecificEntries(ctx context.Context, ids []string) ([]RawEntry, error) {
	all, err := e.FetchPrimary(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]RawEntry, len(all))
	for _, entry := range all {
		byID[entry.ID] = entry
	}

	out := make([]RawEntry, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		entry, ok := byID[id]
		if !ok {
			e.logger.Warn("stubbing missing catalog entry", "entry", id)
			entry = RawEntry{ID: id, Type: "model", Stub: true, Error: "not present in collection"}
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// filter keeps model entries, optionally restricted to one parent
// collection prefix, deduplicated by id and above the information
// threshold.
func (e *Extractor) filter(entries []RawEntry) []RawEntry {
	kept := make([]RawEntry, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.Type != "model" || entry.ID == "" || seen[entry.ID] {
			continue
		}
		if e.parentID != "" && !strings.HasPrefix(entry.ID, e.parentID+"/") {
			continue
		}
		seen[entry.ID] = true
		if !entry.Informative() {
			e.logger.Debug("skipping uninformative entry", "entry", entry.ID)
			continue
		}
		kept = append(kept, entry)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].ID < kept[j].ID })
	return kept
}
