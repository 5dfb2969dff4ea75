package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProposalsCommitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "proposals_committed_total",
			Help: "Total number of drafts committed as proposals",
		},
	)

	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposal_validation_failures_total",
			Help: "Total number of rejected drafts by error code",
		},
		[]string{"code"},
	)

	Deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposal_deliveries_total",
			Help: "Total number of delivery attempts by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	DeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "proposal_delivery_duration_seconds",
			Help: "Duration of a single delivery attempt in seconds",
		},
		[]string{"channel"},
	)

	DeliveriesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "proposal_deliveries_in_flight",
			Help: "Number of deliveries currently running",
		},
	)

	Exports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposal_exports_total",
			Help: "Total number of rendered projections by format",
		},
		[]string{"format"},
	)
)
