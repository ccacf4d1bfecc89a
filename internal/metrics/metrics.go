// Package metrics exposes Prometheus counters, histograms and gauges for
// the fetch, convert and deliver steps of a session.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation labels
const (
	OpFetch   = "fetch"
	OpAcquire = "acquire"
	OpConvert = "convert"
	OpDeliver = "deliver"
	OpPublish = "publish"
)

// Recorder is what the session flow reports to
type Recorder interface {
	RecordSuccess(operation string)
	RecordError(operation, errorType string)
	RecordDuration(operation string, seconds float64)
	RecordFileSize(fileType string, bytes int64)
	StartOperation(operation string)
	EndOperation(operation string)
}

// PrometheusMetrics implements Recorder with the Prometheus client library
type PrometheusMetrics struct {
	namespace string

	processedTotal  *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	durationSeconds *prometheus.HistogramVec
	fileSizeBytes   *prometheus.HistogramVec
	inProgress      *prometheus.GaugeVec
}

// New creates the metric set prefixed with namespace and registers it with
// reg, or with the default registry when reg is nil.
//
// Registered metrics:
//   - {namespace}_processed_total{status,operation}
//   - {namespace}_errors_total{error_type,operation}
//   - {namespace}_duration_seconds{operation}
//   - {namespace}_file_size_bytes{file_type}
//   - {namespace}_in_progress{operation}
func New(namespace string, reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &PrometheusMetrics{namespace: namespace}

	m.processedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_processed_total", namespace),
			Help: "Total session steps by status and operation",
		},
		[]string{"status", "operation"},
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_errors_total", namespace),
			Help: "Total failed session steps by error type and operation",
		},
		[]string{"error_type", "operation"},
	)

	// Downloads and re-encodes take minutes, not milliseconds
	m.durationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_duration_seconds", namespace),
			Help:    "Session step duration",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"operation"},
	)

	m.fileSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: fmt.Sprintf("%s_file_size_bytes", namespace),
			Help: "Size of produced media files",
			Buckets: []float64{
				1048576,    // 1MB
				10485760,   // 10MB
				104857600,  // 100MB
				524288000,  // 500MB
				1073741824, // 1GB
				4294967296, // 4GB
			},
		},
		[]string{"file_type"},
	)

	m.inProgress = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_in_progress", namespace),
			Help: "Session steps currently running",
		},
		[]string{"operation"},
	)

	reg.MustRegister(
		m.processedTotal,
		m.errorsTotal,
		m.durationSeconds,
		m.fileSizeBytes,
		m.inProgress,
	)

	return m
}

// RecordSuccess increments the success counter for operation
func (m *PrometheusMetrics) RecordSuccess(operation string) {
	m.processedTotal.WithLabelValues("success", operation).Inc()
}

// RecordError increments both the processed counter (status="error") and
// the detailed error counter
func (m *PrometheusMetrics) RecordError(operation, errorType string) {
	m.processedTotal.WithLabelValues("error", operation).Inc()
	m.errorsTotal.WithLabelValues(errorType, operation).Inc()
}

// RecordDuration observes an operation duration in seconds
func (m *PrometheusMetrics) RecordDuration(operation string, seconds float64) {
	m.durationSeconds.WithLabelValues(operation).Observe(seconds)
}

// RecordFileSize observes the size of a produced file
func (m *PrometheusMetrics) RecordFileSize(fileType string, bytes int64) {
	m.fileSizeBytes.WithLabelValues(fileType).Observe(float64(bytes))
}

// StartOperation increments the in-progress gauge; pair with EndOperation
func (m *PrometheusMetrics) StartOperation(operation string) {
	m.inProgress.WithLabelValues(operation).Inc()
}

// EndOperation decrements the in-progress gauge
func (m *PrometheusMetrics) EndOperation(operation string) {
	m.inProgress.WithLabelValues(operation).Dec()
}

// Nop discards everything; used when metrics are disabled and by the desktop app
type Nop struct{}

func (Nop) RecordSuccess(string)           {}
func (Nop) RecordError(string, string)     {}
func (Nop) RecordDuration(string, float64) {}
func (Nop) RecordFileSize(string, int64)   {}
func (Nop) StartOperation(string)          {}
func (Nop) EndOperation(string)            {}
