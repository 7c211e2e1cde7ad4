// Package metrics provides Prometheus metrics for the medalboard service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultNamespace = "medalboard"
	defaultSubsystem = "feed"
)

// Manager manages all Prometheus metrics for the medalboard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Upstream feed
	feedFetches       *prometheus.CounterVec
	feedFetchDuration *prometheus.HistogramVec

	// Cache store
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	cacheLoadErrors  *prometheus.CounterVec
	cacheStaleWrites *prometheus.CounterVec
	cacheEntries     prometheus.Gauge

	// Refresh orchestration
	refreshRuns     prometheus.Counter
	refreshFailures *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	lastUpdateUnix  prometheus.Gauge

	// Result matching
	podiumLookups *prometheus.CounterVec

	// HTTP boundary
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec

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
		namespace:        defaultNamespace,
		subsystem:        defaultSubsystem,
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.feedFetches = m.counterVec("fetches_total",
		"Upstream feed requests by resource and outcome (ok, transport, http_status, decode)",
		"resource", "outcome")
	m.feedFetchDuration = m.histogramVec("fetch_duration_seconds",
		"Upstream feed request latency in seconds", "resource")

	m.cacheHits = m.counterVec("cache_hits_total", "Cache reads served without loading", "resource")
	m.cacheMisses = m.counterVec("cache_misses_total", "Cache reads that invoked the loader (expired, empty or forced)", "resource")
	m.cacheLoadErrors = m.counterVec("cache_load_errors_total", "Loader failures; the previous entry is kept", "resource")
	m.cacheStaleWrites = m.counterVec("cache_stale_completions_total",
		"Loader completions discarded because a newer load already committed", "resource")
	m.cacheEntries = m.gauge("cache_entries", "Number of keys held by the cache store")

	m.refreshRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "refresh_runs_total",
		Help:        "Number of refresh-all runs (periodic and on demand)",
		ConstLabels: m.constLabels,
	})
	m.refreshFailures = m.counterVec("refresh_failures_total", "Per-feed failures during refresh-all", "resource")
	m.refreshDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "refresh_duration_seconds",
		Help:        "Duration of refresh-all runs in seconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})
	m.lastUpdateUnix = m.gauge("last_update_timestamp_seconds", "Unix time of the last successful feed load")

	m.podiumLookups = m.counterVec("podium_lookups_total",
		"Podium lookups for finished medal units by result (matched, empty)", "result")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_seconds",
		"HTTP request duration in seconds", "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component and kind", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.constLabels,
	})
}

// RecordFeedFetch records one upstream request and its latency.
func (m *Manager) RecordFeedFetch(resource, outcome string, took time.Duration) {
	m.feedFetches.WithLabelValues(resource, outcome).Inc()
	m.feedFetchDuration.WithLabelValues(resource).Observe(took.Seconds())
}

// RecordCacheHit increments the hit counter for a resource.
func (m *Manager) RecordCacheHit(resource string) { m.cacheHits.WithLabelValues(resource).Inc() }

// RecordCacheMiss increments the miss counter for a resource.
func (m *Manager) RecordCacheMiss(resource string) { m.cacheMisses.WithLabelValues(resource).Inc() }

// RecordCacheLoadError increments the loader failure counter for a resource.
func (m *Manager) RecordCacheLoadError(resource string) {
	m.cacheLoadErrors.WithLabelValues(resource).Inc()
}

// RecordCacheStaleCompletion counts a load result that lost to a newer one.
func (m *Manager) RecordCacheStaleCompletion(resource string) {
	m.cacheStaleWrites.WithLabelValues(resource).Inc()
}

// UpdateCacheEntries sets the number of cache keys.
func (m *Manager) UpdateCacheEntries(n int) { m.cacheEntries.Set(float64(n)) }

// RecordRefresh records a refresh-all run.
func (m *Manager) RecordRefresh(took time.Duration) {
	m.refreshRuns.Inc()
	m.refreshDuration.Observe(took.Seconds())
}

// RecordRefreshFailure counts one feed failing during refresh-all.
func (m *Manager) RecordRefreshFailure(resource string) {
	m.refreshFailures.WithLabelValues(resource).Inc()
}

// UpdateLastUpdate publishes the last successful load time.
func (m *Manager) UpdateLastUpdate(t time.Time) { m.lastUpdateUnix.Set(float64(t.Unix())) }

// RecordPodiumLookup counts a podium lookup outcome.
func (m *Manager) RecordPodiumLookup(matched bool) {
	result := "empty"
	if matched {
		result = "matched"
	}
	m.podiumLookups.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records an HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, took time.Duration) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(took.Seconds())
}

// RecordErrorByComponent records an error with component and type labels.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	m.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) { m.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func (m *Manager) UpdateSystemGoroutineCount(count int) { m.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func (m *Manager) RecordSystemGCPauseTime(pauseMs float64) { m.systemGCPauseTime.Observe(pauseMs) }

// Package-level helpers delegate to the global manager.

// RecordFeedFetch records one upstream request on the global manager.
func RecordFeedFetch(resource, outcome string, took time.Duration) {
	globalManager.RecordFeedFetch(resource, outcome, took)
}

// RecordCacheHit increments the global hit counter.
func RecordCacheHit(resource string) { globalManager.RecordCacheHit(resource) }

// RecordCacheMiss increments the global miss counter.
func RecordCacheMiss(resource string) { globalManager.RecordCacheMiss(resource) }

// RecordCacheLoadError increments the global loader failure counter.
func RecordCacheLoadError(resource string) { globalManager.RecordCacheLoadError(resource) }

// RecordCacheStaleCompletion counts a discarded stale load on the global manager.
func RecordCacheStaleCompletion(resource string) { globalManager.RecordCacheStaleCompletion(resource) }

// UpdateCacheEntries sets the global cache key gauge.
func UpdateCacheEntries(n int) { globalManager.UpdateCacheEntries(n) }

// RecordRefresh records a refresh-all run on the global manager.
func RecordRefresh(took time.Duration) { globalManager.RecordRefresh(took) }

// RecordRefreshFailure counts a per-feed refresh failure on the global manager.
func RecordRefreshFailure(resource string) { globalManager.RecordRefreshFailure(resource) }

// UpdateLastUpdate publishes the last successful load time on the global manager.
func UpdateLastUpdate(t time.Time) { globalManager.UpdateLastUpdate(t) }

// RecordPodiumLookup counts a podium lookup on the global manager.
func RecordPodiumLookup(matched bool) { globalManager.RecordPodiumLookup(matched) }

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, took time.Duration) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, took)
}

// RecordErrorByComponent records an error on the global manager.
func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

// UpdateSystemMemoryUsage sets the global memory gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.UpdateSystemMemoryUsage(bytes) }

// UpdateSystemGoroutineCount sets the global goroutine gauge.
func UpdateSystemGoroutineCount(count int) { globalManager.UpdateSystemGoroutineCount(count) }

// RecordSystemGCPauseTime records GC pause time on the global manager.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.RecordSystemGCPauseTime(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
