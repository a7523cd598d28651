// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the frage service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// WebBuckets defines histogram buckets suited for database-backed CRUD
// request latencies, ranging from 1ms to 10s.
var WebBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 10}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frage_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "frage_request_duration_seconds",
			Help:    "Request duration",
			Buckets: WebBuckets,
		},
		[]string{"method"},
	)

	// AuthFailuresTotal counts rejected authentication attempts by reason.
	AuthFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frage_auth_failures_total",
			Help: "Authentication failures",
		},
		[]string{"reason"},
	)

	// RateLimitRejectedTotal counts requests rejected by the rate limiter.
	RateLimitRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "frage_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuthFailuresTotal,
		RateLimitRejectedTotal,
	)
}
