// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	RateLimitRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ratelimit_rejected_total",
		Help: "Requests rejected by the rate limiter.",
	})

	RateLimitErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ratelimit_errors_total",
		Help: "Rate limiter backend failures (requests were let through).",
	})

	AuthAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_attempts_total",
		Help: "Register and login attempts by outcome.",
	}, []string{"action", "outcome"})
)
