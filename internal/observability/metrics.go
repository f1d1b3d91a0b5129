// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Refresh run metrics
	RunsTotal      *prometheus.CounterVec
	RunDuration    prometheus.Histogram
	EligibleTokens prometheus.Gauge

	// Per-token metrics
	TokensProcessed *prometheus.CounterVec
	FetchFailures   *prometheus.CounterVec
	PersistFailures prometheus.Counter
	FallbackTokens  prometheus.Counter

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "gemchain"
	}

	return &Metrics{
		// Refresh run metrics
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "price_refresh",
			Name:      "runs_total",
			Help:      "Total number of price refresh runs by status",
		}, []string{"status"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "price_refresh",
			Name:      "run_duration_seconds",
			Help:      "Price refresh run duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		EligibleTokens: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "price_refresh",
			Name:      "eligible_tokens",
			Help:      "Number of eligible tokens in the most recent run",
		}),

		// Per-token metrics
		TokensProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "price_refresh",
			Name:      "tokens_processed_total",
			Help:      "Total number of tokens whose prices were updated, by source",
		}, []string{"source"}),
		FetchFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "price_refresh",
			Name:      "fetch_failures_total",
			Help:      "Total number of failed price fetches by source",
		}, []string{"source"}),
		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "price_refresh",
			Name:      "persist_failures_total",
			Help:      "Total number of price updates that failed to write",
		}),
		FallbackTokens: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "price_refresh",
			Name:      "fallback_tokens_total",
			Help:      "Total number of tokens routed to the fallback tier",
		}),

		// Health metrics
		LastSuccessfulRun: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of the last completed refresh run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// All Record methods are no-ops on a nil receiver so callers can run with
// metrics left unwired.

// RecordRun records a finished refresh run.
func (m *Metrics) RecordRun(status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(durationSeconds)
}

// RecordEligible sets the eligible token gauge for the current run.
func (m *Metrics) RecordEligible(count int) {
	if m == nil {
		return
	}
	m.EligibleTokens.Set(float64(count))
}

// RecordSuccessfulRunAt marks the finish time of the last completed run.
func (m *Metrics) RecordSuccessfulRunAt(at time.Time) {
	if m == nil {
		return
	}
	m.LastSuccessfulRun.Set(float64(at.Unix()))
}

// RecordTokenProcessed increments the processed counter for a source.
func (m *Metrics) RecordTokenProcessed(source string) {
	if m == nil {
		return
	}
	m.TokensProcessed.WithLabelValues(source).Inc()
}

// RecordFetchFailure increments the fetch failure counter for a source.
func (m *Metrics) RecordFetchFailure(source string) {
	if m == nil {
		return
	}
	m.FetchFailures.WithLabelValues(source).Inc()
}

// RecordPersistFailure increments the persist failure counter.
func (m *Metrics) RecordPersistFailure() {
	if m == nil {
		return
	}
	m.PersistFailures.Inc()
}

// RecordFallback adds to the fallback token counter.
func (m *Metrics) RecordFallback(count int) {
	if m == nil {
		return
	}
	m.FallbackTokens.Add(float64(count))
}
