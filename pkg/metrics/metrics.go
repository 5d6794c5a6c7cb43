package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "openpayments_http_requests_total",
			Help: "Total number of HTTP requests by route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "openpayments_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "openpayments_query_duration_seconds",
			Help:    "Duration of dataset queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"dataset", "kind"},
	)

	QueryErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "openpayments_query_errors_total",
			Help: "Total number of failed dataset queries",
		},
		[]string{"dataset", "reason"},
	)

	CountCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "openpayments_count_cache_total",
			Help: "Count cache lookups by result",
		},
		[]string{"dataset", "result"},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "openpayments_breaker_state",
			Help: "Circuit breaker state per dataset (0 closed, 1 open, 2 half-open)",
		},
		[]string{"dataset"},
	)
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Query kinds.
const (
	KindData  = "data"
	KindCount = "count"
)
