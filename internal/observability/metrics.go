package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Backend API metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_api_request_duration_seconds",
			Help:    "Backend API request latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "status"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_api_requests_total",
			Help: "Total number of backend API requests",
		},
		[]string{"operation", "status"},
	)

	// Fetch state machine metrics
	FetchDispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_fetch_dispatches_total",
			Help: "Total number of fetch dispatches per view",
		},
		[]string{"view"},
	)

	FetchStaleDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_fetch_stale_dropped_total",
			Help: "Responses discarded because a newer request superseded them",
		},
		[]string{"view"},
	)

	// Cart metrics
	CartMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Cart mutation attempts by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// Session metrics
	SessionRevalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_session_revalidations_total",
			Help: "Startup session revalidations by outcome",
		},
		[]string{"outcome"},
	)

	// Telemetry metrics
	TelemetryEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_telemetry_events_total",
			Help: "Interaction events by outcome (sent, failed, dropped)",
		},
		[]string{"outcome"},
	)
)
