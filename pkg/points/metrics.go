package points

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "points_submissions_created_total",
			Help: "Total number of pending submissions created",
		},
	)

	// approved, rejected, stale
	decisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_decisions_total",
			Help: "Total number of administrator decisions by outcome",
		},
		[]string{"outcome"},
	)

	pointsCredited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "points_credited_total",
			Help: "Total number of points credited to users",
		},
	)

	unrecognizedDescriptors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "points_unrecognized_descriptors_total",
			Help: "Total number of availed service inputs not found in the catalog",
		},
	)

	sessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "points_sessions_expired_total",
			Help: "Total number of dialogue sessions dropped after inactivity",
		},
	)

	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type"}, // store, notify_admin, notify_user, ack_admin, prompt
	)
)
