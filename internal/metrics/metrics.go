// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for CatalogRequests.
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
	OutcomeRejected    = "rejected"
)

var (
	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audible_catalog_requests_total",
			Help: "Total number of outbound catalog requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "audible_catalog_request_duration_seconds",
			Help:    "Duration of outbound catalog requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	MatchCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "audible_match_candidates",
			Help:    "Number of candidates returned per match request",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audible_http_requests_total",
			Help: "Total number of inbound host requests by route pattern and status",
		},
		[]string{"route", "status"},
	)
)
