package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// AdmissionDecisionsTotal counts per-guard outcomes. outcome is either
	// "admitted" or "blocked".
	AdmissionDecisionsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateguard_admission_decisions_total",
			Help: "Guard decisions by guard name and outcome",
		},
		[]string{"guard", "outcome"},
	)

	RateLimitExceededTotal = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "gateguard_rate_limit_exceeded_total",
			Help: "Requests rejected because a rate limit window was exhausted",
		},
	)

	RateLimitRecords = promauto.With(registerer).NewGauge(
		prometheus.GaugeOpts{
			Name: "gateguard_rate_limit_records",
			Help: "Live window records held by the counter store",
		},
	)

	SweepRemovedTotal = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "gateguard_sweep_removed_total",
			Help: "Stale window records reclaimed by the background sweep",
		},
	)
)

// Registry exposes the private registry for the metrics endpoint.
func Registry() *prometheus.Registry {
	return registry
}
