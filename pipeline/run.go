// Package pipeline implements the stage-DAG runtime: typed stages with
// named input edges, run-identified artifact folders, and coarse-grained
// parallel materialization.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Stage tiers partition the run folder by processing phase.
const (
	TierRaw        = "1_raw"
	TierNormalized = "2_normalized"
	TierRDF        = "3_rdf"
)

// Run identifies one pipeline materialization and owns its directory
// tree. Artifacts under a run folder are append-only: stages create
// files and never mutate them after the owning stage returns.
type Run struct {
	ID        string
	StartedAt time.Time
	root      string
}

// NewRun creates a run rooted at dataRoot. The id combines the start
// timestamp with a short random suffix so concurrent runs never share
// folders.
func NewRun(dataRoot string) (*Run, error) {
	now := time.Now().UTC()
	suffix := strings.Split(uuid.New().String(), "-")[0]
	run := &Run{
		ID:        fmt.Sprintf("%s_%s", now.Format("20060102_150405"), suffix),
		StartedAt: now,
		root:      dataRoot,
	}
	if err := os.MkdirAll(dataRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data root: %w", err)
	}
	return run, nil
}

// Dir returns (and creates) the run folder for a tier and platform.
func (r *Run) Dir(tier, platform string) (string, error) {
	dir := filepath.Join(r.root, tier, platform, r.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create run folder: %w", err)
	}
	return dir, nil
}

// Path returns a file path inside a run folder without creating it.
func (r *Run) Path(tier, platform, name string) string {
	return filepath.Join(r.root, tier, platform, r.ID, name)
}
