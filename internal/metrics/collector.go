// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// Metrics collector
// =============================================================================

// Collector holds the service metrics.
type Collector struct {
	namespace string

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRequestSize     *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// Artifact lifecycle metrics
	artifactsCreated   prometheus.Counter
	artifactsPaid      prometheus.Counter
	artifactsDelivered prometheus.Counter
	artifactsExpired   prometheus.Counter

	// Upstream call metrics
	processorDuration *prometheus.HistogramVec
	checkoutDuration  *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector creates a metrics collector registered on the default registry.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	c := &Collector{
		namespace: namespace,
		logger:    logger.With(zap.String("component", "metrics")),
	}

	// HTTP metrics
	c.httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.httpRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_size_bytes",
			Help:      "HTTP request size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	c.httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// Artifact lifecycle metrics
	c.artifactsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_created_total",
			Help:      "Total number of artifacts stored after processing",
		},
	)

	c.artifactsPaid = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_paid_total",
			Help:      "Total number of artifacts marked paid",
		},
	)

	c.artifactsDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_delivered_total",
			Help:      "Total number of artifacts delivered",
		},
	)

	c.artifactsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_expired_total",
			Help:      "Total number of artifacts removed by TTL expiry",
		},
	)

	// Upstream call metrics
	c.processorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "processor_request_duration_seconds",
			Help:      "Document processor request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"status"},
	)

	c.checkoutDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_request_duration_seconds",
			Help:      "Payment gateway request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"operation", "status"},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// HTTP metrics
// =============================================================================

// RecordHTTPRequest records one HTTP request.
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration, requestSize, responseSize int64) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	c.httpRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	c.httpResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// =============================================================================
// Artifact lifecycle metrics
// =============================================================================

// RecordArtifactCreated counts a stored artifact.
func (c *Collector) RecordArtifactCreated() {
	c.artifactsCreated.Inc()
}

// RecordArtifactPaid counts a confirmed payment.
func (c *Collector) RecordArtifactPaid() {
	c.artifactsPaid.Inc()
}

// RecordArtifactDelivered counts a delivered artifact.
func (c *Collector) RecordArtifactDelivered() {
	c.artifactsDelivered.Inc()
}

// RecordArtifactsExpired counts artifacts removed by a sweep.
func (c *Collector) RecordArtifactsExpired(n int) {
	c.artifactsExpired.Add(float64(n))
}

// TrackLiveRecords exposes the current number of stored records as a gauge.
// The callback runs at scrape time and must be safe for concurrent use.
func (c *Collector) TrackLiveRecords(count func() int) {
	promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: c.namespace,
			Name:      "artifacts_live",
			Help:      "Number of records currently held in the store",
		},
		func() float64 { return float64(count()) },
	)
}

// =============================================================================
// Upstream call metrics
// =============================================================================

// RecordProcessorRequest records one document processor call.
func (c *Collector) RecordProcessorRequest(status string, duration time.Duration) {
	c.processorDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordCheckoutRequest records one payment gateway call.
func (c *Collector) RecordCheckoutRequest(operation, status string, duration time.Duration) {
	c.checkoutDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// =============================================================================
// Helpers
// =============================================================================

// statusCode buckets an HTTP status code into its class.
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
