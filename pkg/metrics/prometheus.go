// Package metrics provides Prometheus metrics for the election map service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Load pipeline metrics
	loadsTotal    *prometheus.CounterVec
	loadDuration  prometheus.Histogram
	rowsParsed    prometheus.Counter
	rowsDropped   prometheus.Counter
	loadedYears   prometheus.Gauge
	villageCount  prometheus.Gauge
	districtCount prometheus.Gauge
	boundaryCount prometheus.Gauge

	// Annotation metrics
	annotationOps   *prometheus.CounterVec
	annotationCount prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "election",
		subsystem:        "map",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.loadsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "loads_total",
		Help:      "Year loads by result (success, schema_error, fetch_error, parse_error)",
	}, []string{"result"})

	m.loadDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "load_duration_seconds",
		Help:      "Histogram of end-to-end year load duration",
		Buckets:   m.histogramBuckets,
	})

	m.rowsParsed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_parsed_total",
		Help:      "Raw vote rows decoded from source files",
	})

	m.rowsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_dropped_total",
		Help:      "Rows discarded for missing geo key or district name",
	})

	m.loadedYears = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "loaded_years",
		Help:      "Number of years with a cached aggregation",
	})

	m.villageCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "villages",
		Help:      "Villages in the most recently loaded year",
	})

	m.districtCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "districts",
		Help:      "Districts in the most recently loaded year",
	})

	m.boundaryCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "boundaries",
		Help:      "Boundary features held in the process-wide cache",
	})

	m.annotationOps = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "annotation_ops_total",
		Help:      "Annotation mutations by kind (save, delete)",
	}, []string{"op"})

	m.annotationCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "annotations",
		Help:      "Annotations currently held in session memory",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})
}

// GetRegistry returns the registry metrics are collected into, for the
// promhttp handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers delegating to the global manager.

// RecordLoad counts a year load by result label.
func RecordLoad(result string) {
	globalManager.loadsTotal.WithLabelValues(result).Inc()
}

// RecordLoadDuration observes one end-to-end load.
func RecordLoadDuration(seconds float64) {
	globalManager.loadDuration.Observe(seconds)
}

// RecordRowsParsed counts decoded rows.
func RecordRowsParsed(n int) {
	globalManager.rowsParsed.Add(float64(n))
}

// RecordRowsDropped counts rows discarded during aggregation.
func RecordRowsDropped(n int) {
	globalManager.rowsDropped.Add(float64(n))
}

// UpdateLoadedYears sets the cached-year gauge.
func UpdateLoadedYears(n int) {
	globalManager.loadedYears.Set(float64(n))
}

// UpdateEntityCounts sets the village and district gauges.
func UpdateEntityCounts(villages, districts int) {
	globalManager.villageCount.Set(float64(villages))
	globalManager.districtCount.Set(float64(districts))
}

// UpdateBoundaryCount sets the boundary-cache gauge.
func UpdateBoundaryCount(n int) {
	globalManager.boundaryCount.Set(float64(n))
}

// RecordAnnotationOp counts one annotation mutation.
func RecordAnnotationOp(op string) {
	globalManager.annotationOps.WithLabelValues(op).Inc()
}

// UpdateAnnotationCount sets the annotation gauge.
func UpdateAnnotationCount(n int) {
	globalManager.annotationCount.Set(float64(n))
}

// RecordHTTPRequest counts one request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes one request duration.
func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
}
