package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// SchedulerTicks counts scheduler ticks by result (ok, store_error, queue_error, skipped).
	SchedulerTicks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_ticks_total",
			Help: "Total number of scheduler ticks by result",
		},
		[]string{"result"},
	)

	// MonitorsDue counts monitors selected as due across all ticks.
	MonitorsDue = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_monitors_due_total",
			Help: "Total number of monitors selected as due",
		},
	)

	// ScansRunning is the number of scans currently executing.
	ScansRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scans_running",
			Help: "Number of scans currently executing",
		},
	)

	// ScansTotal counts finished scan executions by outcome (success, failure, partial, noop, retry).
	ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scans_total",
			Help: "Total number of scan executions finished by outcome",
		},
		[]string{"outcome"},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	uuidPathSegment    = regexp.MustCompile(`/[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, SchedulerTicks, MonitorsDue, ScansRunning, ScansTotal)
	})
}

// NormalizePath reduces cardinality by replacing numeric and uuid path
// segments with {id}. E.g. /api/monitors/3f2c...e1 -> /api/monitors/{id}.
func NormalizePath(path string) string {
	path = uuidPathSegment.ReplaceAllString(path, "/{id}$1")
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// RecordTick records one scheduler tick with its result and due count.
func RecordTick(result string, due int) {
	SchedulerTicks.WithLabelValues(result).Inc()
	if due > 0 {
		MonitorsDue.Add(float64(due))
	}
}

// IncScansRunning increments the running scans gauge (call when a scan starts).
func IncScansRunning() {
	ScansRunning.Inc()
}

// DecScansRunning decrements the running scans gauge (call when a scan finishes).
func DecScansRunning() {
	ScansRunning.Dec()
}

// IncScansTotal increments the scans counter for the given outcome.
func IncScansTotal(outcome string) {
	ScansTotal.WithLabelValues(outcome).Inc()
}
