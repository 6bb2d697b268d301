// Package metrics provides Prometheus metrics for the showcase ranking service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 5 * time.Second
)

// Manager manages all Prometheus metrics for the showcase service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Evaluation workflow
	evaluationsSubmitted prometheus.Counter
	evaluationsRejected  *prometheus.CounterVec
	evaluationsTotal     prometheus.Gauge
	postsTotal           prometheus.Gauge

	// Ranking computations
	rankingLatency     *prometheus.HistogramVec
	rankingPostsScored prometheus.Counter
	rankingErrors      prometheus.Counter

	// Store access
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// Notification dispatch
	notificationsEnqueued   prometheus.Counter
	notificationsDispatched prometheus.Counter
	notificationsFailed     prometheus.Counter
	notificationsDropped    prometheus.Counter
	notificationsDuplicate  prometheus.Counter
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueUtilization        prometheus.Gauge
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "showcase",
		subsystem:        "ranking",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// RefreshInterval is how often gauges read from live state are refreshed.
func (m *Manager) RefreshInterval() time.Duration {
	return m.refreshInterval
}

// RefreshInterval returns the refresh interval of the global manager.
func RefreshInterval() time.Duration {
	return globalManager.RefreshInterval()
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.evaluationsSubmitted = m.counter("evaluations_submitted_total", "Total number of judge evaluations persisted")
	m.evaluationsRejected = m.counterVec("evaluations_rejected_total", "Total number of rejected evaluation submissions by reason", "reason")
	m.evaluationsTotal = m.gauge("evaluations", "Number of evaluations held by the evaluation store")
	m.postsTotal = m.gauge("posts", "Number of posts visible to the ranking engine")

	m.rankingLatency = m.histogramVec("compute_latency_milliseconds", "Latency of on-demand ranking computations in milliseconds", "view")
	m.rankingPostsScored = m.counter("posts_scored_total", "Total number of posts scored by the blended ranking")
	m.rankingErrors = m.counter("errors_total", "Total number of failed ranking computations")

	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Store operation latency in milliseconds", "store", "operation")
	m.storeErrors = m.counterVec("store_errors_total", "Store operation failures", "store", "operation")

	m.notificationsEnqueued = m.counter("notifications_enqueued_total", "Notifications accepted by the dispatch queue")
	m.notificationsDispatched = m.counter("notifications_dispatched_total", "Notifications delivered to the publisher")
	m.notificationsFailed = m.counter("notifications_failed_total", "Notifications the publisher failed to deliver")
	m.notificationsDropped = m.counter("notifications_dropped_total", "Notifications dropped because the dispatch queue was full or closed")
	m.notificationsDuplicate = m.counter("notifications_duplicate_total", "Notifications suppressed as duplicates")

	m.queueSize = m.gauge("notify_queue_size", "Current size of the notification queue")
	m.queueCapacity = m.gauge("notify_queue_capacity", "Maximum capacity of the notification queue")
	m.queueUtilization = m.gauge("notify_queue_utilization_ratio", "Notification queue utilization ratio (0-1)")
	m.workerCount = m.gauge("notify_worker_count", "Number of notification delivery workers")
	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("notify_delivery_latency_milliseconds"),
		Help:        "Notification delivery latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	})

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint, method and type", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds", "Latency of operations that resulted in an error", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_time_milliseconds"),
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.customLabels,
	})
}

// Enabled reports whether the manager records observations.
func (m *Manager) Enabled() bool { return m.enabled }

// Evaluation Metrics Functions.

// RecordEvaluationSubmitted increments the persisted evaluations counter.
func RecordEvaluationSubmitted() {
	if globalManager.enabled {
		globalManager.evaluationsSubmitted.Inc()
	}
}

// RecordEvaluationRejected counts a rejected submission, e.g. "invalid_input" or "conflict".
func RecordEvaluationRejected(reason string) {
	if globalManager.enabled {
		globalManager.evaluationsRejected.WithLabelValues(reason).Inc()
	}
}

// UpdateEvaluationsTotal sets the number of stored evaluations.
func UpdateEvaluationsTotal(count int) {
	globalManager.evaluationsTotal.Set(float64(count))
}

// UpdatePostsTotal sets the number of posts known to the post store.
func UpdatePostsTotal(count int) {
	globalManager.postsTotal.Set(float64(count))
}

// Ranking Metrics Functions.

// RecordRankingLatency records how long a ranking view took to compute.
func RecordRankingLatency(view string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.rankingLatency.WithLabelValues(view).Observe(latencyMs)
	}
}

// RecordPostsScored adds n to the scored posts counter.
func RecordPostsScored(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.rankingPostsScored.Add(float64(n))
	}
}

// RecordRankingError increments the ranking error counter.
func RecordRankingError() {
	globalManager.rankingErrors.Inc()
}

// Store Metrics Functions.

// RecordStoreLatency records a store operation latency in milliseconds.
func RecordStoreLatency(store, operation string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.storeLatency.WithLabelValues(store, operation).Observe(latencyMs)
	}
}

// RecordStoreError increments the store error counter.
func RecordStoreError(store, operation string) {
	globalManager.storeErrors.WithLabelValues(store, operation).Inc()
}

// Notification Metrics Functions.

// RecordNotificationEnqueued increments the enqueued notifications counter.
func RecordNotificationEnqueued() {
	globalManager.notificationsEnqueued.Inc()
}

// RecordNotificationDispatched increments the delivered notifications counter.
func RecordNotificationDispatched() {
	globalManager.notificationsDispatched.Inc()
}

// RecordNotificationFailed increments the failed notifications counter.
func RecordNotificationFailed() {
	globalManager.notificationsFailed.Inc()
}

// RecordNotificationDropped increments the dropped notifications counter.
func RecordNotificationDropped() {
	globalManager.notificationsDropped.Inc()
}

// RecordNotificationDuplicate increments the suppressed duplicates counter.
func RecordNotificationDuplicate() {
	globalManager.notificationsDuplicate.Inc()
}

// UpdateQueueSize sets the current notification queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum notification queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the notification queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// UpdateWorkerCount sets the number of delivery workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records one notification delivery latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.workerProcessingLatency.Observe(latencyMs)
	}
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
