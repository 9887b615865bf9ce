// Package events publishes pipeline lifecycle events to NATS so other
// services can follow extraction runs without polling the run folders.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/zbmed-semtec/mlentory/pipeline"
)

// SubjectPrefix roots every run event subject.
const SubjectPrefix = "mlentory.run"

// StageEvent is the wire form of one stage lifecycle notification.
type StageEvent struct {
	RunID    string    `json:"run_id"`
	Platform string    `json:"platform"`
	Stage    string    `json:"stage"`
	Phase    string    `json:"phase"`
	Status   string    `json:"status,omitempty"`
	Error    string    `json:"error,omitempty"`
	Duration float64   `json:"duration_seconds,omitempty"`
	At       time.Time `json:"at"`
}

// Publisher emits stage events on mlentory.run.<platform>.<stage>.
// The zero value is a no-op observer, so callers can wire it
// unconditionally and only connect when eventing is configured.
type Publisher struct {
	conn     *nats.Conn
	platform string
	logger   *slog.Logger
}

// NewPublisher connects to a NATS server. url may be empty to disable
// publishing entirely.
func NewPublisher(url, platform string, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Publisher{platform: platform, logger: logger}
	if url == "" {
		return p, nil
	}

	conn, err := nats.Connect(url,
		nats.Name("mlentory-etl"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	p.conn = conn
	return p, nil
}

// Close drains the connection. Safe on a disconnected publisher.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("failed to drain nats connection", "error", err)
	}
}

// StageStarted implements pipeline.Observer.
func (p *Publisher) StageStarted(run *pipeline.Run, stage string) {
	p.publish(StageEvent{
		RunID:    run.ID,
		Platform: p.platform,
		Stage:    stage,
		Phase:    "started",
		At:       time.Now().UTC(),
	})
}

// StageFinished implements pipeline.Observer.
func (p *Publisher) StageFinished(run *pipeline.Run, stage string, result pipeline.StageResult) {
	p.publish(StageEvent{
		RunID:    run.ID,
		Platform: p.platform,
		Stage:    stage,
		Phase:    "finished",
		Status:   string(result.Status),
		Error:    result.Error,
		Duration: result.Duration,
		At:       time.Now().UTC(),
	})
}

func (p *Publisher) publish(event StageEvent) {
	if p == nil || p.conn == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("failed to encode stage event", "stage", event.Stage, "error", err)
		return
	}
	subject := fmt.Sprintf("%s.%s.%s", SubjectPrefix, event.Platform, event.Stage)
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn("failed to publish stage event", "subject", subject, "error", err)
	}
}
