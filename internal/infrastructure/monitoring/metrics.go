package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. Each instance owns its registry so
// several servers (or tests) can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Filesystem operation metrics
	FileOps        *prometheus.CounterVec
	FileOpDuration *prometheus.HistogramVec

	// Upload metrics
	UploadedBytes prometheus.Counter
	UploadedFiles prometheus.Counter

	// Listing metrics
	ListedEntries prometheus.Histogram

	startTime time.Time
}

// NewMetrics creates a new metrics collector with its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remotefs_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "remotefs_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"method", "route"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "remotefs_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 9),
			},
			[]string{"method", "route"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "remotefs_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 9),
			},
			[]string{"method", "route"},
		),

		FileOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remotefs_file_operations_total",
				Help: "Filesystem operations by kind and outcome",
			},
			[]string{"op", "outcome"},
		),
		FileOpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "remotefs_file_operation_duration_seconds",
				Help:    "Filesystem operation duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 30, 120},
			},
			[]string{"op"},
		),

		UploadedBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "remotefs_uploaded_bytes_total",
				Help: "Bytes written by uploads",
			},
		),
		UploadedFiles: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "remotefs_uploaded_files_total",
				Help: "Files created by uploads",
			},
		),

		ListedEntries: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "remotefs_listing_entries",
				Help:    "Number of entries returned per listing",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "remotefs_uptime_seconds",
			Help: "Server uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, route).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, route).Observe(float64(respSize))
}

// RecordFileOp records one filesystem operation.
func (m *Metrics) RecordFileOp(op, outcome string, duration time.Duration) {
	m.FileOps.WithLabelValues(op, outcome).Inc()
	m.FileOpDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordUpload records the files and bytes stored by one upload request.
func (m *Metrics) RecordUpload(files int, bytes int64) {
	m.UploadedFiles.Add(float64(files))
	m.UploadedBytes.Add(float64(bytes))
}

// RecordListing records the size of a listing.
func (m *Metrics) RecordListing(entries int) {
	m.ListedEntries.Observe(float64(entries))
}
