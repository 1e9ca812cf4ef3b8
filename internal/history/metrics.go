package history

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Hand lifecycle metrics
	HandsFinishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_hands_finished_total",
		Help: "Total number of finished hands",
	}, []string{"street_reached"})

	PotSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "poker_hand_pot_chips",
		Help:    "Distribution of total pot sizes",
		Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000},
	})

	HandEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_hand_events_total",
		Help: "Total number of hand history events by kind",
	}, []string{"kind"})

	PlayerActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_player_actions_total",
		Help: "Total number of player actions by kind",
	}, []string{"action"})

	// Publisher metrics
	PublishDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "poker_history_publish_duration_seconds",
		Help:    "Time spent publishing hand history to Kafka",
		Buckets: prometheus.DefBuckets,
	})

	PublishFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "poker_history_publish_failures_total",
		Help: "Total number of failed hand history publishes",
	})

	AnalyticsWriteFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "poker_history_analytics_write_failures_total",
		Help: "Total number of failed analytics writes",
	})
)
