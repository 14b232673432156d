// Package metrics defines the Prometheus instruments exported by the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission pipeline metrics
var (
	// SubmissionsTotal tracks submissions by kind (confession/reply) and outcome
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_total",
			Help: "Total submissions by kind and outcome (accepted/flagged/rejected/failed)",
		},
		[]string{"kind", "outcome"},
	)

	// PublishTotal tracks durable publisher uploads by status
	PublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publish_total",
			Help: "Total durable publisher uploads by status",
		},
		[]string{"status"},
	)

	// PublishDuration tracks publisher upload latency in seconds
	PublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "publish_duration_seconds",
			Help:    "Durable publisher upload duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)
)

// Content analyzer metrics
var (
	// AnalyzerRequestsTotal tracks analyzer calls by mode and status
	AnalyzerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyzer_requests_total",
			Help: "Total content analyzer requests by mode and status",
		},
		[]string{"mode", "status"},
	)

	// AnalyzerFallbacksTotal counts moderation decisions taken via fail-open fallback
	AnalyzerFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analyzer_fallbacks_total",
			Help: "Total moderation verdicts produced by the fail-open fallback",
		},
	)

	// CrisisNotificationsTotal counts directed crisis-support notifications
	CrisisNotificationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crisis_notifications_total",
			Help: "Total crisis-support notifications emitted",
		},
	)
)

// Vote ledger metrics
var (
	// VotesTotal tracks vote casts by subject kind and result
	VotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votes_total",
			Help: "Total vote casts by subject kind and result (created/switched/duplicate)",
		},
		[]string{"kind", "result"},
	)
)

// WebSocket fan-out metrics
var (
	// WSConnectedClients tracks currently connected WebSocket clients
	WSConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connected_clients",
			Help: "Number of currently connected WebSocket clients",
		},
	)

	// WSBroadcastsTotal tracks broadcast events by envelope type
	WSBroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_broadcasts_total",
			Help: "Total broadcast events by envelope type",
		},
		[]string{"type"},
	)

	// WSDroppedClientsTotal counts clients disconnected for not keeping up
	WSDroppedClientsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_dropped_clients_total",
			Help: "Total clients disconnected because their send buffer was full",
		},
	)
)
