package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Join outcomes
const (
	JoinIgnoredBot        = "ignored_bot"
	JoinRestricted        = "restricted"
	JoinAlreadyRestricted = "already_restricted"
	JoinRebanned          = "rebanned"
	JoinRestrictFailed    = "restrict_failed"
	JoinRemoveFailed      = "remove_failed"
	JoinStorageFailed     = "storage_failed"
)

// Sweep member outcomes
const (
	SweepPromoted = "promoted"
	SweepFailed   = "failed"
)

var (
	// JoinsTotal counts handled join updates by outcome.
	JoinsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restrictor_joins_total",
		Help: "Total number of join updates handled, by outcome",
	}, []string{"outcome"})

	// SweepsTotal counts sweep runs.
	SweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restrictor_sweeps_total",
		Help: "Total number of expiry sweeps run",
	})

	// SweepMembersTotal counts expired members processed by outcome.
	SweepMembersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restrictor_sweep_members_total",
		Help: "Total number of expired members processed by sweeps, by outcome",
	}, []string{"outcome"})

	// SweepDuration records how long a sweep took.
	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "restrictor_sweep_duration_seconds",
		Help:    "Expiry sweep duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// StoreMembers is the number of members per lifecycle state.
	StoreMembers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "restrictor_store_members",
		Help: "Number of stored members by lifecycle state",
	}, []string{"state"})
)

// ObserveStore updates the store gauges.
func ObserveStore(restricted, banned int64) {
	StoreMembers.WithLabelValues("restricted").Set(float64(restricted))
	StoreMembers.WithLabelValues("banned").Set(float64(banned))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
