package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequests tracks public API requests by route and status
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shutterbook_http_requests_total",
			Help: "Total public API requests by route and status code",
		},
		[]string{"route", "status"},
	)

	// httpLatency tracks public API request latency by route
	httpLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shutterbook_http_request_duration_seconds",
			Help:    "Public API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// rateLimited counts requests rejected by the per-IP limiter
	rateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shutterbook_http_rate_limited_total",
			Help: "Requests rejected by the per-IP rate limiter",
		},
	)
)
