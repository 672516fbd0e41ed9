package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WalletTopUpsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fiestapp_wallet_topups_total",
			Help: "Total number of completed wallet top-ups",
		},
	)

	WalletDebitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiestapp_wallet_debits_total",
			Help: "Total number of wallet debits",
		},
		[]string{"type"},
	)

	MatchTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiestapp_match_transitions_total",
			Help: "Total number of match state transitions",
		},
		[]string{"action", "outcome"},
	)

	DisputesResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiestapp_disputes_resolved_total",
			Help: "Total number of resolved disputes",
		},
		[]string{"outcome"},
	)

	ProviderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiestapp_provider_errors_total",
			Help: "Total number of payment provider call failures",
		},
		[]string{"provider", "op"},
	)
)

func RecordTopUp() {
	WalletTopUpsTotal.Inc()
}

func RecordDebit(txType string) {
	WalletDebitsTotal.WithLabelValues(txType).Inc()
}

func RecordMatchTransition(action, outcome string) {
	MatchTransitionsTotal.WithLabelValues(action, outcome).Inc()
}

func RecordDisputeResolved(outcome string) {
	DisputesResolvedTotal.WithLabelValues(outcome).Inc()
}

func RecordProviderError(provider, op string) {
	ProviderErrorsTotal.WithLabelValues(provider, op).Inc()
}
