// Package metrics provides Prometheus metrics for the MoCap monitoring
// pipeline.
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

	// Pipeline counters - packet classification along the ingestion path
	packetsReceived  prometheus.Counter
	packetsDiscarded *prometheus.CounterVec
	throttleDrops    prometheus.Counter
	samplesAccepted  prometheus.Counter
	samplesDuplicate prometheus.Counter
	packetsLost      prometheus.Counter
	processLatency   prometheus.Histogram

	// Broker connectivity
	brokerConnected  prometheus.Gauge
	brokerReconnects prometheus.Counter

	// Queue - bridge between the MQTT callback and the consumer loop
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueDequeues    prometheus.Counter
	queueDropped     prometheus.Counter

	// Marker state
	markerCount  prometheus.Gauge
	registrySize prometheus.Gauge

	// Render scheduler
	renderTicks    prometheus.Counter
	renders        *prometheus.CounterVec
	renderErrors   *prometheus.CounterVec
	renderDuration prometheus.Histogram

	// Export
	exports      *prometheus.CounterVec
	exportErrors *prometheus.CounterVec

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "mocapd",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.packetsReceived = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "packets_received_total",
		Help:      "Total number of inbound messages seen on the channel",
	})

	m.packetsDiscarded = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "packets_discarded_total",
			Help:      "Total number of messages dropped before storage, by reason",
		},
		[]string{"reason"},
	)

	m.throttleDrops = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "throttle_drops_total",
		Help:      "Total number of messages dropped by the minimum-spacing gate",
	})

	m.samplesAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "samples_accepted_total",
		Help:      "Total number of validated samples stored",
	})

	m.samplesDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "samples_duplicate_total",
		Help:      "Total number of samples flagged as checksum duplicates",
	})

	m.packetsLost = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "packets_lost_estimated_total",
		Help:      "Estimated packets lost, from per-marker sequence gaps",
	})

	m.processLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "processing_latency_milliseconds",
		Help:      "Latency of one normalize-track-store step in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.brokerConnected = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "broker_connected",
		Help:      "1 when the MQTT connection is up, 0 otherwise",
	})

	m.brokerReconnects = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "broker_reconnects_total",
		Help:      "Total number of MQTT reconnect attempts",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the inbound message queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum queue capacity",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Queue utilization ratio (current size / capacity)",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of messages enqueued",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of messages dequeued",
	})

	m.queueDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dropped_total",
		Help:      "Total number of messages dropped because the queue was full or closed",
	})

	m.markerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "marker_count",
		Help:      "Number of markers currently tracked",
	})

	m.registrySize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "checksum_registry_size",
		Help:      "Number of checksums recorded this session",
	})

	m.renderTicks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "render_ticks_total",
		Help:      "Total number of render scheduler ticks",
	})

	m.renders = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "renders_total",
			Help:      "Total number of chart redraws, by chart kind",
		},
		[]string{"kind"},
	)

	m.renderErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "render_errors_total",
			Help:      "Total number of failed chart redraws, by chart kind",
		},
		[]string{"kind"},
	)

	m.renderDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "render_duration_milliseconds",
		Help:      "Duration of one chart redraw in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.exports = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "exports_total",
			Help:      "Total number of completed exports, by format",
		},
		[]string{"format"},
	)

	m.exportErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "export_errors_total",
			Help:      "Total number of failed exports, by format",
		},
		[]string{"format"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// RecordPacketReceived increments the inbound message counter.
func RecordPacketReceived() {
	globalManager.packetsReceived.Inc()
}

// RecordPacketDiscarded increments the discard counter for one reason
// ("bad_envelope", "bad_geometry", "not_telemetry").
func RecordPacketDiscarded(reason string) {
	globalManager.packetsDiscarded.WithLabelValues(reason).Inc()
}

// RecordThrottleDrop increments the throttle drop counter.
func RecordThrottleDrop() {
	globalManager.throttleDrops.Inc()
}

// RecordSampleAccepted increments the accepted samples counter.
func RecordSampleAccepted() {
	globalManager.samplesAccepted.Inc()
}

// RecordSampleDuplicate increments the duplicate samples counter.
func RecordSampleDuplicate() {
	globalManager.samplesDuplicate.Inc()
}

// AddPacketsLostEstimated adds a sequence gap to the loss counter.
func AddPacketsLostEstimated(n int64) {
	if n > 0 {
		globalManager.packetsLost.Add(float64(n))
	}
}

// RecordProcessingLatency records one pipeline step's latency in milliseconds.
func RecordProcessingLatency(latencyMs float64) {
	globalManager.processLatency.Observe(latencyMs)
}

// UpdateBrokerConnected sets the connectivity gauge.
func UpdateBrokerConnected(connected bool) {
	if connected {
		globalManager.brokerConnected.Set(1)
	} else {
		globalManager.brokerConnected.Set(0)
	}
}

// RecordBrokerReconnect increments the reconnect counter.
func RecordBrokerReconnect() {
	globalManager.brokerReconnects.Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueDropped increments the queue drop counter.
func RecordQueueDropped() {
	globalManager.queueDropped.Inc()
}

// UpdateMarkerCount sets the tracked marker count.
func UpdateMarkerCount(count int) {
	globalManager.markerCount.Set(float64(count))
}

// UpdateRegistrySize sets the checksum registry size.
func UpdateRegistrySize(size int64) {
	globalManager.registrySize.Set(float64(size))
}

// RecordRenderTick increments the scheduler tick counter.
func RecordRenderTick() {
	globalManager.renderTicks.Inc()
}

// RecordRender increments the redraw counter for a chart kind.
func RecordRender(kind string) {
	globalManager.renders.WithLabelValues(kind).Inc()
}

// RecordRenderError increments the redraw error counter for a chart kind.
func RecordRenderError(kind string) {
	globalManager.renderErrors.WithLabelValues(kind).Inc()
}

// RecordRenderDuration records one redraw's duration in milliseconds.
func RecordRenderDuration(latencyMs float64) {
	globalManager.renderDuration.Observe(latencyMs)
}

// RecordExport increments the export counter for a format ("csv", "json").
func RecordExport(format string) {
	globalManager.exports.WithLabelValues(format).Inc()
}

// RecordExportError increments the export error counter for a format.
func RecordExportError(format string) {
	globalManager.exportErrors.WithLabelValues(format).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
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
