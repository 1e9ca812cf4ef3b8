package rng

import (
	"time"
)

// ShuffleAuditEvent records a single shuffle for certification review.
// DeckBefore/DeckAfter carry card IDs (0-51), not card values, to keep the
// record compact.
type ShuffleAuditEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	TableID    uint64    `json:"table_id"`
	HandID     uint64    `json:"hand_id"`
	HandIndex  uint64    `json:"hand_index"`
	SeedHash   string    `json:"seed_hash"`
	DeckBefore []int     `json:"deck_before"`
	DeckAfter  []int     `json:"deck_after"`
	Algorithm  string    `json:"algorithm"`
	PRNG       string    `json:"prng"`
}

// NewShuffleAuditEvent creates a structured audit entry for a shuffle.
// Only the seed hash is recorded; the seed itself stays in state.
func NewShuffleAuditEvent(seed Seed, tableID, handID, handIndex uint64, deckBefore, deckAfter []int) *ShuffleAuditEvent {
	return &ShuffleAuditEvent{
		Timestamp:  time.Now().UTC(),
		TableID:    tableID,
		HandID:     handID,
		HandIndex:  handIndex,
		SeedHash:   seed.Hash(),
		DeckBefore: deckBefore,
		DeckAfter:  deckAfter,
		Algorithm:  "Fisher-Yates",
		PRNG:       "AES-CTR-256",
	}
}

// AuditSink receives shuffle audit events. NopAuditSink is the only
// implementation here; the table manager uses it unless SetAuditSink is called.
type AuditSink interface {
	LogShuffleEvent(event *ShuffleAuditEvent) error
}

// NopAuditSink discards audit events
type NopAuditSink struct{}

func (NopAuditSink) LogShuffleEvent(*ShuffleAuditEvent) error { return nil }
