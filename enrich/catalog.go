package enrich

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// CatalogEntry is one curated term definition.
type CatalogEntry struct {
	Term       string
	Definition string
	Aliases    []string
}

// Catalog is the curated keyword catalog: a CSV of
// term,definition,aliases (aliases separated by ';') loaded into
// memory and optionally hot-reloaded on file change.
type Catalog struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[string]CatalogEntry
}

// LoadCatalog reads the curated CSV at path.
func LoadCatalog(path string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{path: path, logger: logger}
	if err := c.reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Lookup finds an entry by term or alias, case-insensitively.
func (c *Catalog) Lookup(term string) (CatalogEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[strings.ToLower(strings.TrimSpace(term))]
	return entry, ok
}

// Len returns the number of distinct lookup keys.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Watch re-loads the catalog whenever its file changes, until ctx is
// done. A failed reload keeps the previous entries.
func (c *Catalog) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create catalog watcher: %w", err)
	}
	if err := watcher.Add(c.path); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch catalog: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					if err := c.reload(); err != nil {
						c.logger.Warn("catalog reload failed", "path", c.path, "error", err)
						continue
					}
					c.logger.Info("catalog reloaded", "path", c.path, "entries", c.Len())
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.logger.Warn("catalog watcher error", "error", err)
			}
		}
	}()
	return nil
}

func (c *Catalog) reload() error {
	f, err := os.Open(c.path)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to parse catalog: %w", err)
	}

	entries := make(map[string]CatalogEntry, len(rows))
	for i, row := range rows {
		if i == 0 && strings.EqualFold(row[0], "keyword") {
			continue
		}
		if len(row) < 2 || row[0] == "" {
			continue
		}
		entry := CatalogEntry{
			Term:       strings.TrimSpace(row[0]),
			Definition: strings.TrimSpace(row[1]),
		}
		if len(row) > 2 && row[2] != "" {
			for _, alias := range strings.Split(row[2], ";") {
				if alias = strings.TrimSpace(alias); alias != "" {
					entry.Aliases = append(entry.Aliases, alias)
				}
			}
		}
		entries[strings.ToLower(entry.Term)] = entry
		for _, alias := range entry.Aliases {
			entries[strings.ToLower(alias)] = entry
		}
	}

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()
	return nil
}

// LoadTaskCatalog reads a task-alias CSV of alias,canonical rows into
// the lowercase alias map consumed by task identification.
func LoadTaskCatalog(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open task catalog: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse task catalog: %w", err)
	}

	catalog := make(map[string]string, len(rows))
	for i, row := range rows {
		if i == 0 && strings.EqualFold(row[0], "alias") {
			continue
		}
		if len(row) < 2 || row[0] == "" || row[1] == "" {
			continue
		}
		catalog[strings.ToLower(strings.TrimSpace(row[0]))] = strings.TrimSpace(row[1])
	}
	return catalog, nil
}
