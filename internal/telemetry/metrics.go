// Package telemetry exposes Prometheus metrics for the analysis pipeline:
// scan volume, escalations, deep-analysis failures, and insight counts.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "psyched"

// Metrics holds the pipeline's Prometheus instruments. A nil *Metrics is
// valid everywhere one is accepted and disables recording.
type Metrics struct {
	scansTotal        *prometheus.CounterVec
	escalationsTotal  *prometheus.CounterVec
	deepFailuresTotal *prometheus.CounterVec
	insightsTotal     *prometheus.CounterVec
	deepDuration      *prometheus.HistogramVec
}

// New creates and registers the pipeline metrics. If registry is nil, the
// default Prometheus registerer is used.
func New(registry prometheus.Registerer) (*Metrics, error) {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		scansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scans_total",
				Help:      "Total number of quick pattern scans run",
			},
			[]string{"framework"},
		),
		escalationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "escalations_total",
				Help:      "Total number of scans escalated to deep analysis",
			},
			[]string{"framework"},
		),
		deepFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deep_failures_total",
				Help:      "Total number of deep analyses that degraded to pattern_only",
			},
			[]string{"framework"},
		),
		insightsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "insights_total",
				Help:      "Total number of cross-framework insights emitted",
			},
			[]string{"type"},
		),
		deepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "deep_analysis_seconds",
				Help:      "Duration of deep analyses in seconds",
				// Model calls run hundreds of milliseconds to tens of seconds.
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"framework"},
		),
	}

	collectors := []prometheus.Collector{
		m.scansTotal, m.escalationsTotal, m.deepFailuresTotal, m.insightsTotal, m.deepDuration,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordScan counts one quick scan.
func (m *Metrics) RecordScan(frameworkName string) {
	if m == nil {
		return
	}
	m.scansTotal.WithLabelValues(frameworkName).Inc()
}

// RecordEscalation counts one escalation to deep analysis.
func (m *Metrics) RecordEscalation(frameworkName string) {
	if m == nil {
		return
	}
	m.escalationsTotal.WithLabelValues(frameworkName).Inc()
}

// RecordDeepFailure counts one degraded deep analysis.
func (m *Metrics) RecordDeepFailure(frameworkName string) {
	if m == nil {
		return
	}
	m.deepFailuresTotal.WithLabelValues(frameworkName).Inc()
}

// RecordDeepDuration records the wall time of one deep analysis.
func (m *Metrics) RecordDeepDuration(frameworkName string, d time.Duration) {
	if m == nil {
		return
	}
	m.deepDuration.WithLabelValues(frameworkName).Observe(d.Seconds())
}

// RecordInsight counts one emitted insight.
func (m *Metrics) RecordInsight(insightType string) {
	if m == nil {
		return
	}
	m.insightsTotal.WithLabelValues(insightType).Inc()
}
