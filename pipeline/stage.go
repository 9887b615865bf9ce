package pipeline

import (
	"context"
	"errors"
)

// StageFunc is the handler of one stage. It receives the artifacts of its
// declared input edges keyed by upstream stage name and returns a single
// output artifact. Handlers must be pure with respect to the run folder:
// identical inputs produce the same artifact set.
type StageFunc func(ctx context.Context, inputs map[string]Artifact) (Artifact, error)

// Stage is a node in the pipeline DAG.
type Stage struct {
	// Name identifies the stage; input edges reference it.
	Name string

	// Inputs are the names of upstream stages whose outputs this stage
	// consumes.
	Inputs []string

	// Run is the stage handler.
	Run StageFunc
}

// StageStatus is the terminal state of a stage in one materialization.
type StageStatus string

const (
	StatusSucceeded StageStatus = "succeeded"
	StatusFailed    StageStatus = "failed"
	StatusSkipped   StageStatus = "skipped"
)

// StageResult records the outcome of one stage.
type StageResult struct {
	Status   StageStatus `json:"status"`
	Output   Artifact    `json:"output,omitempty"`
	Error    string      `json:"error,omitempty"`
	Duration float64     `json:"duration_seconds"`
}

// ErrSkipped marks a stage that never ran because an upstream stage
// failed. Sibling branches are unaffected.
var ErrSkipped = errors.New("stage skipped: upstream failure")

// ErrEmptyOutput marks a stage whose every record failed validation.
var ErrEmptyOutput = errors.New("stage produced no valid records")
