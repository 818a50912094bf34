// Package metrics provides Prometheus metrics for the staffnote service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LatencyBuckets returns the default histogram buckets. Latencies are recorded
// in milliseconds, so buckets double from 1ms up to about two minutes.
func LatencyBuckets() []float64 {
	return prometheus.ExponentialBuckets(1, 2, 18)
}

// Manager manages all Prometheus metrics for the staffnote service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Business metrics
	employeesCreated   prometheus.Counter
	employeeConflicts  prometheus.Counter
	eventsCreated      *prometheus.CounterVec
	mappingsUpserted   prometheus.Counter
	summariesGenerated prometheus.Counter
	summariesSaved     prometheus.Counter
	summaryFailures    *prometheus.CounterVec

	// Auth
	authFailures *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// Dependencies: document store, generative model, chat webhook
	storeOperations      *prometheus.CounterVec
	storeLatency         *prometheus.HistogramVec
	upstreamCalls        *prometheus.CounterVec
	upstreamLatency      *prometheus.HistogramVec
	notificationsSkipped prometheus.Counter

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "staffnote",
		subsystem:        "api",
		histogramBuckets: LatencyBuckets(),
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.employeesCreated = auto.NewCounter(m.counterOpts("employees_created_total",
		"Total number of employees created"))
	m.employeeConflicts = auto.NewCounter(m.counterOpts("employee_conflicts_total",
		"Total number of employee creates rejected because the id already exists"))
	m.eventsCreated = auto.NewCounterVec(m.counterOpts("employee_events_created_total",
		"Total number of employee events created by event type"), []string{"event_type"})
	m.mappingsUpserted = auto.NewCounter(m.counterOpts("meet_mappings_upserted_total",
		"Total number of Google Meet name mappings written"))
	m.summariesGenerated = auto.NewCounter(m.counterOpts("meeting_summaries_generated_total",
		"Total number of meeting summaries extracted from transcripts"))
	m.summariesSaved = auto.NewCounter(m.counterOpts("meeting_summaries_saved_total",
		"Total number of meeting summaries persisted"))
	m.summaryFailures = auto.NewCounterVec(m.counterOpts("meeting_summary_failures_total",
		"Total number of failed summary extractions by reason"), []string{"reason"})

	m.authFailures = auto.NewCounterVec(m.counterOpts("auth_failures_total",
		"Total number of rejected requests by reason"), []string{"reason"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("http_errors_total",
		"HTTP error responses by endpoint, method and error type"), []string{"endpoint", "method", "error_type"})

	m.storeOperations = auto.NewCounterVec(m.counterOpts("store_operations_total",
		"Document store operations by kind, operation and outcome"), []string{"kind", "operation", "outcome"})
	m.storeLatency = auto.NewHistogramVec(m.histogramOpts("store_latency_milliseconds",
		"Document store latency in milliseconds"), []string{"kind", "operation"})
	m.upstreamCalls = auto.NewCounterVec(m.counterOpts("upstream_calls_total",
		"Calls to external services by target and outcome"), []string{"target", "outcome"})
	m.upstreamLatency = auto.NewHistogramVec(m.histogramOpts("upstream_latency_milliseconds",
		"External service latency in milliseconds"), []string{"target"})
	m.notificationsSkipped = auto.NewCounter(m.counterOpts("notifications_skipped_total",
		"Summaries not posted because the chat webhook is not configured"))

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes",
		"System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count",
		"Number of goroutines"))
}

// RecordEmployeeCreated increments the employees created counter.
func RecordEmployeeCreated() {
	globalManager.employeesCreated.Inc()
}

// RecordEmployeeConflict increments the duplicate-create counter.
func RecordEmployeeConflict() {
	globalManager.employeeConflicts.Inc()
}

// RecordEventCreated increments the events created counter for eventType.
func RecordEventCreated(eventType string) {
	globalManager.eventsCreated.WithLabelValues(eventType).Inc()
}

// RecordMappingUpserted increments the mapping upsert counter.
func RecordMappingUpserted() {
	globalManager.mappingsUpserted.Inc()
}

// RecordSummaryGenerated increments the generated summaries counter.
func RecordSummaryGenerated() {
	globalManager.summariesGenerated.Inc()
}

// RecordSummarySaved increments the saved summaries counter.
func RecordSummarySaved() {
	globalManager.summariesSaved.Inc()
}

// RecordSummaryFailure records a failed extraction, e.g. "safety_blocked".
func RecordSummaryFailure(reason string) {
	globalManager.summaryFailures.WithLabelValues(reason).Inc()
}

// RecordAuthFailure records a rejected request; reason is "missing" or "mismatch".
func RecordAuthFailure(reason string) {
	globalManager.authFailures.WithLabelValues(reason).Inc()
}

// RecordHTTPRequest increments the HTTP requests counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordStoreOperation records one store call and its latency.
func RecordStoreOperation(kind, operation, outcome string, latencyMs float64) {
	globalManager.storeOperations.WithLabelValues(kind, operation, outcome).Inc()
	globalManager.storeLatency.WithLabelValues(kind, operation).Observe(latencyMs)
}

// RecordUpstreamCall records one call to an external service and its latency.
func RecordUpstreamCall(target, outcome string, latencyMs float64) {
	globalManager.upstreamCalls.WithLabelValues(target, outcome).Inc()
	globalManager.upstreamLatency.WithLabelValues(target).Observe(latencyMs)
}

// RecordNotificationSkipped increments the skipped notification counter.
func RecordNotificationSkipped() {
	globalManager.notificationsSkipped.Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
