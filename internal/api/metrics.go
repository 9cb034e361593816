package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mediajournal",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route template and status code.",
		},
		[]string{"method", "route", "code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mediajournal",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route template.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ownershipDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mediajournal",
			Name:      "ownership_denials_total",
			Help:      "Requests rejected because the caller does not own the record.",
		},
		[]string{"resource"},
	)

	authFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mediajournal",
			Name:      "auth_failures_total",
			Help:      "Requests rejected for a missing, invalid or expired token.",
		},
		[]string{"reason"},
	)
)
