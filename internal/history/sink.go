package history

import (
	"context"
	"time"

	"github.com/decred/slog"

	"holdem-platform/internal/game"
	"holdem-platform/internal/storage"
)

// Sink fans finished hands out to metrics, Kafka and ClickHouse. Publishing
// happens off the table's command path so a slow broker never blocks play;
// failures are counted and logged, not propagated to the engine.
type Sink struct {
	log       slog.Logger
	producer  *KafkaProducer
	analytics *storage.ClickHouseAnalytics
	timeout   time.Duration
}

// NewSink builds a sink; producer and analytics may each be nil
func NewSink(log slog.Logger, producer *KafkaProducer, analytics *storage.ClickHouseAnalytics) *Sink {
	return &Sink{
		log:       log,
		producer:  producer,
		analytics: analytics,
		timeout:   5 * time.Second,
	}
}

// HandFinished implements game.HandFinishedSink
func (s *Sink) HandFinished(summary *game.HandSummary, hist *game.HandHistory) {
	HandsFinishedTotal.WithLabelValues(summary.StreetReached.String()).Inc()
	PotSize.Observe(float64(summary.TotalPot))
	for _, ev := range hist.Events {
		HandEventsTotal.WithLabelValues(string(ev.Kind)).Inc()
		if ev.Kind == game.EventPlayerActed {
			PlayerActionsTotal.WithLabelValues(ev.Action.String()).Inc()
		}
	}

	go s.publish(summary, hist)
}

func (s *Sink) publish(summary *game.HandSummary, hist *game.HandHistory) {
	if s.producer != nil {
		if err := s.producer.PublishHand(summary, hist); err != nil {
			s.log.Errorf("failed to publish hand %d: %v", summary.HandID, err)
		}
	}

	if s.analytics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.analytics.StoreFinishedHand(ctx, summary, hist); err != nil {
			AnalyticsWriteFailuresTotal.Inc()
			s.log.Errorf("failed to store hand %d analytics: %v", summary.HandID, err)
		}
	}
}
