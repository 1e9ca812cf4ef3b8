package history

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"holdem-platform/internal/game"
)

// KafkaProducerConfig holds Kafka producer configuration
type KafkaProducerConfig struct {
	Brokers        []string
	Topic          string
	MaxRetries     int
	RetryBackoff   time.Duration
	FlushFrequency time.Duration
	RequiredAcks   sarama.RequiredAcks
	Compression    sarama.CompressionCodec
}

// DefaultKafkaProducerConfig returns a safe default configuration
func DefaultKafkaProducerConfig(brokers []string) KafkaProducerConfig {
	return KafkaProducerConfig{
		Brokers:        brokers,
		Topic:          "poker.hand-history",
		MaxRetries:     3,
		RetryBackoff:   100 * time.Millisecond,
		FlushFrequency: 500 * time.Millisecond,
		RequiredAcks:   sarama.WaitForAll,
		Compression:    sarama.CompressionSnappy,
	}
}

// HandMessage is the Kafka payload for one finished hand: the summary plus
// the full ordered event stream.
type HandMessage struct {
	HandID        uint64                  `json:"hand_id"`
	TableID       uint64                  `json:"table_id"`
	StreetReached string                  `json:"street_reached"`
	TotalPot      uint64                  `json:"total_pot"`
	Results       []game.PlayerHandResult `json:"results"`
	Events        []game.HandEvent        `json:"events"`
	FinishedAt    time.Time               `json:"finished_at"`
}

// KafkaProducer publishes finished hands to Kafka
type KafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
	mu       sync.Mutex
	closed   bool
}

// NewKafkaProducer creates a new hand-history producer
func NewKafkaProducer(config KafkaProducerConfig) (*KafkaProducer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.Retry.Max = config.MaxRetries
	saramaConfig.Producer.Retry.Backoff = config.RetryBackoff
	saramaConfig.Producer.Flush.Frequency = config.FlushFrequency
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.Compression

	// Idempotence keeps the event stream duplicate-free across retries.
	if config.RequiredAcks == sarama.WaitForAll {
		saramaConfig.Producer.Idempotent = true
		saramaConfig.Net.MaxOpenRequests = 1
	}

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &KafkaProducer{
		producer: producer,
		topic:    config.Topic,
	}, nil
}

// PublishHand sends one finished hand. Messages are keyed by table id so a
// table's hands stay ordered within a partition.
func (p *KafkaProducer) PublishHand(summary *game.HandSummary, hist *game.HandHistory) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("producer is closed")
	}

	msg := HandMessage{
		HandID:        summary.HandID,
		TableID:       summary.TableID,
		StreetReached: summary.StreetReached.String(),
		TotalPot:      uint64(summary.TotalPot),
		Results:       summary.Results,
		Events:        hist.Events,
		FinishedAt:    time.Now().UTC(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode hand message: %w", err)
	}

	start := time.Now()
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(fmt.Sprintf("%d", summary.TableID)),
		Value: sarama.ByteEncoder(payload),
	})
	PublishDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		PublishFailuresTotal.Inc()
		return fmt.Errorf("failed to publish hand %d: %w", summary.HandID, err)
	}

	return nil
}

// Close shuts the producer down
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.producer.Close()
}
