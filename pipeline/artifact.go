package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Artifact is the opaque reference a stage returns: a filesystem path
// plus small pass-through values (counts, timestamps). Downstream stages
// discover their inputs only through these references.
type Artifact struct {
	Path   string         `json:"path,omitempty"`
	Values map[string]any `json:"values,omitempty"`
}

// PathArtifact wraps a bare path.
func PathArtifact(path string) Artifact {
	return Artifact{Path: path}
}

// Value reads a pass-through value, "" / zero when absent.
func (a Artifact) Value(key string) any {
	if a.Values == nil {
		return nil
	}
	return a.Values[key]
}

// WriteJSON persists any value as indented JSON at path, creating parent
// directories.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", path, err)
	}
	return nil
}

// ReadJSON loads a JSON artifact into v.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read artifact: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}
	return nil
}

// Discover returns the run-folder files matching a doublestar pattern,
// sorted for deterministic consumption order.
func Discover(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid artifact pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}
