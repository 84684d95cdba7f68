package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	attendanceWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_writes_total",
			Help: "Total number of attendance records created or updated",
		},
		[]string{"status"},
	)

	reportsRenderedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_reports_rendered_total",
			Help: "Total number of attendance report images rendered",
		},
		[]string{"format"},
	)

	warcraftlogsCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warcraftlogs_calls_total",
			Help: "Total number of WarcraftLogs API calls",
		},
		[]string{"status"},
	)

	warcraftlogsDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "warcraftlogs_call_duration_seconds",
			Help:    "WarcraftLogs API call duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)
)

// MetricsMiddleware collects Prometheus metrics for every HTTP request.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		c.Next()

		httpRequestsInFlight.Dec()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
	}
}

// RecordAttendanceWrite records an attendance mutation by status.
func RecordAttendanceWrite(status string) {
	attendanceWritesTotal.WithLabelValues(status).Inc()
}

// RecordReportRendered records a rendered attendance report.
func RecordReportRendered(format string) {
	reportsRenderedTotal.WithLabelValues(format).Inc()
}

// RecordWarcraftlogsCall records an outbound WarcraftLogs API call.
func RecordWarcraftlogsCall(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	warcraftlogsCallsTotal.WithLabelValues(status).Inc()
	warcraftlogsDuration.Observe(duration.Seconds())
}
