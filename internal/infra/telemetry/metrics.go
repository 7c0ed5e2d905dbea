// Package telemetry holds the Prometheus metrics and OpenTelemetry tracing setup.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "opspilot"

// Metrics records pipeline steps and finished analyses.
type Metrics struct {
	registry *prometheus.Registry

	steps         *prometheus.CounterVec
	stepDuration  *prometheus.HistogramVec
	analyses      *prometheus.CounterVec
	analysisTotal prometheus.Histogram
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_steps_total",
			Help:      "Pipeline state executions by outcome",
		}, []string{"state", "outcome"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_step_duration_seconds",
			Help:      "Time spent in each pipeline state",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 9),
		}, []string{"state"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Finished analyses by cache status",
		}, []string{"cache_status", "partial"}),
		analysisTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "End-to-end analysis latency",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}
	reg.MustRegister(
		m.steps, m.stepDuration, m.analyses, m.analysisTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveStep(state, outcome string, d time.Duration) {
	m.steps.WithLabelValues(state, outcome).Inc()
	m.stepDuration.WithLabelValues(state).Observe(d.Seconds())
}

func (m *Metrics) ObserveAnalysis(cacheStatus string, partial bool, d time.Duration) {
	m.analyses.WithLabelValues(cacheStatus, strconv.FormatBool(partial)).Inc()
	m.analysisTotal.Observe(d.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
