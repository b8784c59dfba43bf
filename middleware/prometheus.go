package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route", "code"},
	)

	requestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "code"},
	)

	requestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
		[]string{"method", "route"},
	)

	directoryOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_operations_total",
			Help: "Client directory operations by outcome (ok, validation, not_found, duplicate, storage)",
		},
		[]string{"operation", "result"},
	)

	directoryOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "directory_operation_duration_seconds",
			Help:    "Duration of client directory operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

func shouldCollectMetrics(path string) bool { return !isInfraPath(path) }

// PrometheusMiddleware records RED metrics per matched route. The route
// template (e.g. /api/v1/clients/:id) is used instead of the raw path to keep
// label cardinality bounded.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !shouldCollectMetrics(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		method := c.Request.Method
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		requestsInFlight.WithLabelValues(method, route).Inc()
		defer requestsInFlight.WithLabelValues(method, route).Dec()

		c.Next()

		code := strconv.Itoa(c.Writer.Status())
		requestDuration.WithLabelValues(method, route, code).Observe(time.Since(start).Seconds())
		requestTotal.WithLabelValues(method, route, code).Inc()
	}
}

// ObserveOperation records the outcome of one directory operation.
// result is "ok" or a domain error kind.
func ObserveOperation(operation, result string, elapsed time.Duration) {
	if result == "" {
		result = "ok"
	}
	directoryOperations.WithLabelValues(operation, result).Inc()
	directoryOperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
