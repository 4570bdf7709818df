// Package metrics provides Prometheus metrics for the pick service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	metricPrefix     string
	registry         prometheus.Registerer

	// Upstream providers
	upstreamFetches *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec

	// Pipeline
	picksProduced     *prometheus.CounterVec
	matchOutcomes     *prometheus.CounterVec
	estimatedLines    *prometheus.CounterVec
	analysisLatency   prometheus.Histogram
	analysisErrors    prometheus.Counter
	recommendations   *prometheus.CounterVec
	lineHistorySize   prometheus.Gauge
	poolInFlight      prometheus.Gauge
	entitlementDenied *prometheus.CounterVec

	// Repository
	repositoryLatency *prometheus.HistogramVec
	repositoryErrors  *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "picks",
		subsystem:        "engine",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 8000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for all collectors
	auto := promauto.With(m.registry)

	m.upstreamFetches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name("upstream_fetches_total"),
		Help: "Upstream fetches by provider and outcome",
	}, []string{"provider", "outcome"})

	m.upstreamLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    m.name("upstream_latency_milliseconds"),
		Help:    "Upstream fetch latency in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"provider"})

	m.cacheLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name("cache_lookups_total"),
		Help: "Read-through cache results by key family and source",
	}, []string{"family", "source"})

	m.picksProduced = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name("candidate_picks_total"),
		Help: "Candidate picks per type after per-game deduplication",
	}, []string{"type"})

	m.matchOutcomes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name("odds_match_total"),
		Help: "Schedule to odds matching outcomes",
	}, []string{"outcome"})

	m.estimatedLines = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name("estimated_lines_total"),
		Help: "Synthetic lines injected by the estimator",
	}, []string{"basis"})

	m.repositoryLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    m.name("repository_query_latency_milliseconds"),
		Help:    "Repository operation latency in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"backend", "op"})

	m.repositoryErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name("repository_errors_total"),
		Help: "Repository operation failures",
	}, []string{"backend", "op"})

	m.analysisLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    m.name("game_analysis_latency_milliseconds"),
		Help:    "Per-game analysis latency in milliseconds",
		Buckets: m.histogramBuckets,
	})

	m.analysisErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name("game_analysis_errors_total"),
		Help: "Per-game analyses that failed",
	})

	m.recommendations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name("recommendations_total"),
		Help: "Recommendation requests by outcome",
	}, []string{"outcome"})

	m.lineHistorySize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name("line_history_teams"),
		Help: "Teams with a remembered line in the estimator",
	})

	m.poolInFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name("analysis_in_flight"),
		Help: "Per-game analyses currently running",
	})

	m.entitlementDenied = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name("entitlement_denied_total"),
		Help: "Requests rejected by the entitlement gate",
	}, []string{"reason"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name("http_requests_total"),
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    m.name("http_request_duration_milliseconds"),
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name("errors_by_endpoint_total"),
		Help: "HTTP errors by endpoint, method and error type",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name("system_memory_usage_bytes"),
		Help: "Heap bytes allocated",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name("system_goroutine_count"),
		Help: "Number of goroutines",
	})
}

// RecordUpstreamFetch counts one upstream call and its latency.
func RecordUpstreamFetch(provider, outcome string, latency time.Duration) {
	globalManager.upstreamFetches.WithLabelValues(provider, outcome).Inc()
	globalManager.upstreamLatency.WithLabelValues(provider).Observe(float64(latency.Milliseconds()))
}

// RecordCacheLookup counts a read-through cache result.
func RecordCacheLookup(family, source string) {
	globalManager.cacheLookups.WithLabelValues(family, source).Inc()
}

// RecordCandidatePick counts a scored candidate pick.
func RecordCandidatePick(pickType string) {
	globalManager.picksProduced.WithLabelValues(pickType).Inc()
}

// RecordMatch counts a schedule to odds matching outcome.
func RecordMatch(outcome string) {
	globalManager.matchOutcomes.WithLabelValues(outcome).Inc()
}

// RecordEstimatedLine counts a synthetic line by the basis it was derived from.
func RecordEstimatedLine(basis string) {
	globalManager.estimatedLines.WithLabelValues(basis).Inc()
}

// RecordAnalysisLatency records a per-game analysis duration.
func RecordAnalysisLatency(latency time.Duration) {
	globalManager.analysisLatency.Observe(float64(latency.Milliseconds()))
}

// RecordAnalysisError counts a failed per-game analysis.
func RecordAnalysisError() {
	globalManager.analysisErrors.Inc()
}

// RecordRecommendations counts a recommendation request outcome.
func RecordRecommendations(outcome string) {
	globalManager.recommendations.WithLabelValues(outcome).Inc()
}

// UpdateLineHistorySize sets the number of teams tracked by the estimator.
func UpdateLineHistorySize(n int) {
	globalManager.lineHistorySize.Set(float64(n))
}

// AddInFlight moves the in-flight analysis gauge by delta.
func AddInFlight(delta int) {
	globalManager.poolInFlight.Add(float64(delta))
}

// RecordEntitlementDenied counts a gated request.
func RecordEntitlementDenied(reason string) {
	globalManager.entitlementDenied.WithLabelValues(reason).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordRepositoryQuery records one repository operation.
func RecordRepositoryQuery(backend, op string, latency time.Duration, err error) {
	globalManager.repositoryLatency.WithLabelValues(backend, op).Observe(float64(latency.Milliseconds()))
	if err != nil {
		globalManager.repositoryErrors.WithLabelValues(backend, op).Inc()
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
