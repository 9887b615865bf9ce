package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Observer receives stage lifecycle notifications. A nil observer is
// valid and disables notification.
type Observer interface {
	StageStarted(run *Run, stage string)
	StageFinished(run *Run, stage string, result StageResult)
}

// Pipeline is a DAG of named stages bound to one run.
type Pipeline struct {
	run      *Run
	stages   []*Stage
	byName   map[string]*Stage
	logger   *slog.Logger
	metrics  *Metrics
	observer Observer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics attaches stage metrics.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithObserver attaches a lifecycle observer.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observer = o }
}

// New creates a pipeline for a run.
func New(run *Run, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		run:    run,
		byName: make(map[string]*Stage),
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddStage registers a stage. Names must be unique.
func (p *Pipeline) AddStage(s *Stage) error {
	if s.Name == "" {
		return fmt.Errorf("stage name is required")
	}
	if _, exists := p.byName[s.Name]; exists {
		return fmt.Errorf("duplicate stage %q", s.Name)
	}
	if s.Run == nil {
		return fmt.Errorf("stage %q has no handler", s.Name)
	}
	p.byName[s.Name] = s
	p.stages = append(p.stages, s)
	return nil
}

// validate checks that every input edge references a registered stage.
// Cycles surface during materialization as a scheduling deadlock.
func (p *Pipeline) validate() error {
	for _, s := range p.stages {
		for _, input := range s.Inputs {
			if _, ok := p.byName[input]; !ok {
				return fmt.Errorf("stage %q depends on unknown stage %q", s.Name, input)
			}
		}
	}
	return nil
}

// Materialize resolves the DAG and invokes each stage with the outputs
// of its dependencies. Independent branches run in parallel; a stage
// failure halts only its downstream branch. The first stage error is
// returned after all runnable stages complete.
func (p *Pipeline) Materialize(ctx context.Context) (map[string]StageResult, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	type completion struct {
		name   string
		result StageResult
	}

	results := make(map[string]StageResult, len(p.stages))
	pending := make(map[string]*Stage, len(p.stages))
	for _, s := range p.stages {
		pending[s.Name] = s
	}

	doneCh := make(chan completion)
	running := 0
	var firstErr error

	for len(pending) > 0 || running > 0 {
		for name, s := range pending {
			ready, skipped := p.readiness(s, results)
			if !ready {
				continue
			}
			delete(pending, name)

			if skipped {
				result := StageResult{Status: StatusSkipped, Error: ErrSkipped.Error()}
				results[name] = result
				p.logger.Warn("Stage skipped", slog.String("stage", name), slog.String("run", p.run.ID))
				p.notifyFinished(name, result)
				continue
			}

			inputs := make(map[string]Artifact, len(s.Inputs))
			for _, input := range s.Inputs {
				inputs[input] = results[input].Output
			}

			running++
			go func(s *Stage, inputs map[string]Artifact) {
				doneCh <- completion{name: s.Name, result: p.runStage(ctx, s, inputs)}
			}(s, inputs)
		}

		if running == 0 {
			if len(pending) > 0 {
				return results, fmt.Errorf("stage dependency cycle: %d stages unschedulable", len(pending))
			}
			break
		}

		c := <-doneCh
		running--
		results[c.name] = c.result
		if c.result.Status == StatusFailed && firstErr == nil {
			firstErr = fmt.Errorf("stage %s failed: %s", c.name, c.result.Error)
		}
	}

	return results, firstErr
}

// readiness reports whether a stage can be resolved now, and whether it
// must be skipped because an upstream stage did not succeed.
func (p *Pipeline) readiness(s *Stage, results map[string]StageResult) (ready, skipped bool) {
	for _, input := range s.Inputs {
		result, done := results[input]
		if !done {
			return false, false
		}
		if result.Status != StatusSucceeded {
			skipped = true
		}
	}
	return true, skipped
}

func (p *Pipeline) runStage(ctx context.Context, s *Stage, inputs map[string]Artifact) StageResult {
	p.logger.Info("Stage started", slog.String("stage", s.Name), slog.String("run", p.run.ID))
	if p.observer != nil {
		p.observer.StageStarted(p.run, s.Name)
	}

	start := time.Now()
	output, err := s.Run(ctx, inputs)
	elapsed := time.Since(start)

	result := StageResult{Duration: elapsed.Seconds()}
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		p.logger.Error("Stage failed",
			slog.String("stage", s.Name),
			slog.String("run", p.run.ID),
			slog.String("error", err.Error()))
	} else {
		result.Status = StatusSucceeded
		result.Output = output
		p.logger.Info("Stage finished",
			slog.String("stage", s.Name),
			slog.String("run", p.run.ID),
			slog.Duration("elapsed", elapsed))
	}

	if p.metrics != nil {
		p.metrics.ObserveStage(s.Name, string(result.Status), elapsed)
	}
	p.notifyFinished(s.Name, result)
	return result
}

func (p *Pipeline) notifyFinished(stage string, result StageResult) {
	if p.observer != nil {
		p.observer.StageFinished(p.run, stage, result)
	}
}

// WriteReport persists the materialization outcome next to the run
// folders for later inspection.
func (p *Pipeline) WriteReport(results map[string]StageResult) error {
	path := p.run.Path("runs", "", "pipeline_report.json")
	return WriteJSON(path, results)
}

// IsSkipped reports whether an error marks a skipped stage.
func IsSkipped(err error) bool {
	return errors.Is(err, ErrSkipped)
}
