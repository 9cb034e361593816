package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tokenRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mediajournal_client",
			Name:      "token_refreshes_total",
			Help:      "Access token refresh attempts by outcome.",
		},
		[]string{"outcome"},
	)

	requestRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mediajournal_client",
			Name:      "request_retries_total",
			Help:      "Requests replayed after a token refresh.",
		},
	)
)
