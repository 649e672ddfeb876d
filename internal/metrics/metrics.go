// Package metrics exposes prometheus counters for sweeps and removals.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EntriesTotal counts processed watchlist entries by status
	EntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plex_watchlist",
		Name:      "entries_total",
		Help:      "Watchlist entries processed, by status.",
	}, []string{"status"})

	// RemovalAttemptsTotal counts discover removal attempts by shape and result
	RemovalAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plex_watchlist",
		Name:      "removal_attempts_total",
		Help:      "Removal calls against the discover provider, by call shape and result.",
	}, []string{"shape", "result"})

	// RemovalOutcomesTotal counts final removal outcomes
	RemovalOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plex_watchlist",
		Name:      "removal_outcomes_total",
		Help:      "Final removal outcomes.",
	}, []string{"outcome"})

	// SweepDuration observes full sweep durations
	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "plex_watchlist",
		Name:      "sweep_duration_seconds",
		Help:      "Duration of watchlist sweeps.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
	})
)
