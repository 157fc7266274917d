// Package metrics provides Prometheus metrics for the dashport export pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the export pipeline.
type Manager struct {
	namespace string
	subsystem string
	enabled   bool
	registry  prometheus.Registerer

	// Fetch metrics - remote dashboard API health
	fetchRequests *prometheus.CounterVec
	fetchFailures *prometheus.CounterVec
	fetchRetries  prometheus.Counter
	authFailures  prometheus.Counter

	// Pipeline metrics - per-day batch progress
	daysSucceeded prometheus.Counter
	daysFailed    prometheus.Counter

	// Export metrics - produced artifacts
	recordsNormalized *prometheus.CounterVec
	csvRowsWritten    prometheus.Counter
	reportsWritten    prometheus.Counter
	filesSkipped      prometheus.Counter
	usersAggregated   prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "dashport",
		subsystem: "pipeline",
		enabled:   true,
		registry:  prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.fetchRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fetch_requests_total",
			Help:      "Total number of dashboard API fetches by endpoint",
		},
		[]string{"endpoint"},
	)

	m.fetchFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fetch_failures_total",
			Help:      "Total number of dashboard API fetches that exhausted retries",
		},
		[]string{"endpoint"},
	)

	m.fetchRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_retries_total",
		Help:      "Total number of retried requests (429/5xx/network errors)",
	})

	m.authFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "auth_failures_total",
		Help:      "Total number of 401 responses (expired session cookies)",
	})

	m.daysSucceeded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "days_succeeded_total",
		Help:      "Total number of days fully exported in batch runs",
	})

	m.daysFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "days_failed_total",
		Help:      "Total number of days skipped due to errors in batch runs",
	})

	m.recordsNormalized = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "records_normalized_total",
			Help:      "Total number of canonical records produced by record kind",
		},
		[]string{"kind"},
	)

	m.csvRowsWritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "csv_rows_written_total",
		Help:      "Total number of rows written to CSV exports",
	})

	m.reportsWritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reports_written_total",
		Help:      "Total number of per-user report files written",
	})

	m.filesSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "aggregate_files_skipped_total",
		Help:      "Total number of report files skipped during aggregation (parse failures)",
	})

	m.usersAggregated = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "users_aggregated",
		Help:      "Number of distinct users in the most recent aggregated report",
	})
}

// Registry returns the gatherer backing the global manager, for serving
// through promhttp.
func Registry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers operating on the global manager.

// RecordFetch counts one fetch attempt against an endpoint.
func RecordFetch(endpoint string) {
	if globalManager.enabled {
		globalManager.fetchRequests.WithLabelValues(endpoint).Inc()
	}
}

// RecordFetchFailure counts a fetch that exhausted its retries.
func RecordFetchFailure(endpoint string) {
	if globalManager.enabled {
		globalManager.fetchFailures.WithLabelValues(endpoint).Inc()
	}
}

// RecordFetchRetry counts a single retry attempt.
func RecordFetchRetry() {
	if globalManager.enabled {
		globalManager.fetchRetries.Inc()
	}
}

// RecordAuthFailure counts a 401 from the dashboard.
func RecordAuthFailure() {
	if globalManager.enabled {
		globalManager.authFailures.Inc()
	}
}

// RecordDaySucceeded counts a day that exported cleanly.
func RecordDaySucceeded() {
	if globalManager.enabled {
		globalManager.daysSucceeded.Inc()
	}
}

// RecordDayFailed counts a day skipped due to an error.
func RecordDayFailed() {
	if globalManager.enabled {
		globalManager.daysFailed.Inc()
	}
}

// RecordNormalized counts canonical records produced for a record kind.
func RecordNormalized(kind string, n int) {
	if globalManager.enabled && n > 0 {
		globalManager.recordsNormalized.WithLabelValues(kind).Add(float64(n))
	}
}

// AddCSVRows counts rows written to a CSV export.
func AddCSVRows(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.csvRowsWritten.Add(float64(n))
	}
}

// RecordReportWritten counts a per-user report file.
func RecordReportWritten() {
	if globalManager.enabled {
		globalManager.reportsWritten.Inc()
	}
}

// RecordAggregateFileSkipped counts a malformed report file skipped during aggregation.
func RecordAggregateFileSkipped() {
	if globalManager.enabled {
		globalManager.filesSkipped.Inc()
	}
}

// SetUsersAggregated records the distinct-user count of the latest aggregation.
func SetUsersAggregated(n int) {
	if globalManager.enabled {
		globalManager.usersAggregated.Set(float64(n))
	}
}
