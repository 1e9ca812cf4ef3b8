package game

import "holdem-platform/pkg/poker"

// HandEventKind names the event types of the hand-history stream
type HandEventKind string

const (
	EventHandStarted    HandEventKind = "hand_started"
	EventBlindsPosted   HandEventKind = "blinds_posted"
	EventHoleCardsDealt HandEventKind = "hole_cards_dealt"
	EventBoardDealt     HandEventKind = "board_dealt"
	EventPlayerActed    HandEventKind = "player_acted"
	EventStreetChanged  HandEventKind = "street_changed"
	EventShowdownReveal HandEventKind = "showdown_reveal"
	EventPotAwarded     HandEventKind = "pot_awarded"
	EventHandFinished   HandEventKind = "hand_finished"
)

// BlindPost records one forced bet in a BlindsPosted event
type BlindPost struct {
	Seat   int         `json:"seat"`
	Amount poker.Chips `json:"amount"`
}

// HandEvent is one entry of the append-only hand history. Index is the append
// position, strictly monotonic within a hand. Only the fields relevant to the
// event kind are populated.
type HandEvent struct {
	Index   uint32        `json:"index"`
	Kind    HandEventKind `json:"kind"`
	TableID uint64        `json:"table_id,omitempty"`
	HandID  uint64        `json:"hand_id,omitempty"`

	// BlindsPosted
	Dealer     int         `json:"dealer,omitempty"`
	SmallBlind *BlindPost  `json:"small_blind,omitempty"`
	BigBlind   *BlindPost  `json:"big_blind,omitempty"`
	Antes      []BlindPost `json:"antes,omitempty"`

	// Card events
	Seat   int          `json:"seat,omitempty"`
	Cards  []poker.Card `json:"cards,omitempty"`
	Street Street       `json:"street,omitempty"`

	// PlayerActed / PotAwarded / ShowdownReveal
	PlayerID  uint64      `json:"player_id,omitempty"`
	Action    ActionKind  `json:"action,omitempty"`
	NewStack  poker.Chips `json:"new_stack,omitempty"`
	PotAfter  poker.Chips `json:"pot_after,omitempty"`
	Amount    poker.Chips `json:"amount,omitempty"`
	RankValue uint32      `json:"rank_value,omitempty"`
}

// HandHistory is the ordered event log of one hand
type HandHistory struct {
	Events []HandEvent `json:"events"`
}

// Push appends an event, assigning the next index
func (h *HandHistory) Push(ev HandEvent) {
	ev.Index = uint32(len(h.Events))
	h.Events = append(h.Events, ev)
}

// Clone returns a deep copy of the history
func (h *HandHistory) Clone() HandHistory {
	events := make([]HandEvent, len(h.Events))
	copy(events, h.Events)
	return HandHistory{Events: events}
}
