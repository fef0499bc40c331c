package game

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lexiquest_sessions_started_total",
		Help: "Number of game sessions started.",
	})

	sessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lexiquest_sessions_completed_total",
		Help: "Number of game sessions played to the end.",
	})

	wildcardsActivated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lexiquest_wildcards_activated_total",
		Help: "Successful wildcard activations by kind.",
	}, []string{"kind"})

	chargesEarned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lexiquest_charges_earned_total",
		Help: "Wildcard charges credited to players, including anti-frustration awards.",
	})
)
