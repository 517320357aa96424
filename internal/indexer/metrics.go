package indexer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Event outcomes
const (
	outcomeUpserted = "upserted"
	outcomeSkipped  = "skipped"
	outcomeFailed   = "failed"
	outcomeRejected = "rejected"
)

var (
	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auction",
			Subsystem: "indexer",
			Name:      "events_total",
			Help:      "Ledger events handled, by object kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	malformedFieldsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auction",
			Subsystem: "indexer",
			Name:      "malformed_fields_total",
			Help:      "Numeric object fields that could not be parsed and were stored as NULL",
		},
		[]string{"kind", "field"},
	)

	pollPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auction",
			Subsystem: "indexer",
			Name:      "poll_pages_total",
			Help:      "Event pages fetched by the poller",
		},
		[]string{"module"},
	)

	pollErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auction",
			Subsystem: "indexer",
			Name:      "poll_errors_total",
			Help:      "Poll rounds that stopped on an error",
		},
		[]string{"module"},
	)
)
