package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes stage-level prometheus instrumentation.
type Metrics struct {
	stageTotal    *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	records       *prometheus.CounterVec
}

// NewMetrics registers pipeline metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stageTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mlentory_pipeline_stage_total",
			Help: "Stage completions by terminal status.",
		}, []string{"stage", "status"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mlentory_pipeline_stage_duration_seconds",
			Help:    "Stage wall-clock duration.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"stage"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mlentory_pipeline_records_total",
			Help: "Records processed per stage and disposition.",
		}, []string{"stage", "disposition"}),
	}
	if reg != nil {
		reg.MustRegister(m.stageTotal, m.stageDuration, m.records)
	}
	return m
}

// ObserveStage records one stage completion.
func (m *Metrics) ObserveStage(stage, status string, elapsed time.Duration) {
	m.stageTotal.WithLabelValues(stage, status).Inc()
	m.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// AddRecords counts processed records; disposition is one of "ok",
// "stubbed", "diverted".
func (m *Metrics) AddRecords(stage, disposition string, n int) {
	m.records.WithLabelValues(stage, disposition).Add(float64(n))
}
