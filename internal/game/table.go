package game

import (
	"fmt"

	"holdem-platform/pkg/poker"
)

// TableType distinguishes cash tables from tournament tables
type TableType int

const (
	TableCash TableType = iota
	TableTournament
)

func (t TableType) String() string {
	if t == TableTournament {
		return "tournament"
	}
	return "cash"
}

// AnteType selects who posts the ante
type AnteType int

const (
	// AnteNone means no ante is posted
	AnteNone AnteType = iota
	// AnteClassic takes the ante from every eligible seat
	AnteClassic
	// AnteBigBlind takes the whole ante from the big blind seat only
	AnteBigBlind
)

func (a AnteType) String() string {
	switch a {
	case AnteClassic:
		return "classic"
	case AnteBigBlind:
		return "big_blind"
	default:
		return "none"
	}
}

// TableStakes holds the forced bets in play at the table
type TableStakes struct {
	SmallBlind poker.Chips `json:"small_blind"`
	BigBlind   poker.Chips `json:"big_blind"`
	Ante       poker.Chips `json:"ante"`
	AnteType   AnteType    `json:"ante_type"`
}

// TableConfig is the immutable configuration of a table
type TableConfig struct {
	MaxSeats  int         `json:"max_seats"`
	TableType TableType   `json:"table_type"`
	Stakes    TableStakes `json:"stakes"`
}

// Table is the authoritative per-table state. A table owns at most one live
// hand at a time; the engine borrows it exclusively for the duration of each
// command.
type Table struct {
	ID             uint64           `json:"id"`
	Name           string           `json:"name"`
	Config         TableConfig      `json:"config"`
	Seats          []*PlayerAtTable `json:"seats"`
	Board          []poker.Card     `json:"board"`
	DealerButton   int              `json:"dealer_button"` // -1 until the first hand
	Street         Street           `json:"street"`
	HandInProgress bool             `json:"hand_in_progress"`
	TotalPot       poker.Chips      `json:"total_pot"`
	CurrentHandID  uint64           `json:"current_hand_id"`
}

// NewTable creates an empty table with the given configuration
func NewTable(id uint64, name string, config TableConfig) (*Table, error) {
	if config.MaxSeats < 2 || config.MaxSeats > 9 {
		return nil, fmt.Errorf("max seats must be between 2 and 9, got %d", config.MaxSeats)
	}
	if config.Stakes.BigBlind.IsZero() {
		return nil, fmt.Errorf("big blind must be positive")
	}
	if config.Stakes.SmallBlind > config.Stakes.BigBlind {
		return nil, fmt.Errorf("small blind cannot exceed big blind")
	}
	return &Table{
		ID:           id,
		Name:         name,
		Config:       config,
		Seats:        make([]*PlayerAtTable, config.MaxSeats),
		DealerButton: -1,
		Street:       StreetPreflop,
	}, nil
}

// SeatedCount returns the number of occupied seats
func (t *Table) SeatedCount() int {
	count := 0
	for _, p := range t.Seats {
		if p != nil {
			count++
		}
	}
	return count
}

// seatInRange reports whether the index addresses a real seat
func (t *Table) seatInRange(seat int) bool {
	return seat >= 0 && seat < len(t.Seats)
}

// SeatPlayer puts a player into a specific empty seat
func (t *Table) SeatPlayer(seat int, playerID uint64, stack poker.Chips) error {
	if !t.seatInRange(seat) {
		return ErrInvalidSeat
	}
	if t.Seats[seat] != nil {
		return ErrSeatTaken
	}
	t.Seats[seat] = NewPlayerAtTable(playerID, stack)
	return nil
}

// UnseatPlayer removes whoever sits in the seat
func (t *Table) UnseatPlayer(seat int) error {
	if !t.seatInRange(seat) {
		return ErrInvalidSeat
	}
	if t.Seats[seat] == nil {
		return ErrEmptySeat
	}
	if t.HandInProgress {
		return ErrHandAlreadyInProgress
	}
	t.Seats[seat] = nil
	return nil
}

// AdjustStack applies a cash-in or cash-out delta to a seated player.
// The stack never goes below zero.
func (t *Table) AdjustStack(seat int, delta int64) error {
	if !t.seatInRange(seat) {
		return ErrInvalidSeat
	}
	player := t.Seats[seat]
	if player == nil {
		return ErrEmptySeat
	}
	if t.HandInProgress {
		return ErrHandAlreadyInProgress
	}
	if delta >= 0 {
		player.Stack = player.Stack.Add(poker.Chips(delta))
	} else {
		player.Stack = player.Stack.Sub(poker.Chips(-delta))
	}
	if player.Status == PlayerBusted && !player.Stack.IsZero() {
		player.Status = PlayerActive
	}
	return nil
}

// eligibleCount returns the number of seats that can be dealt into a new hand
func (t *Table) eligibleCount() int {
	count := 0
	for _, p := range t.Seats {
		if p != nil && p.Status != PlayerBusted && p.Status != PlayerSittingOut {
			count++
		}
	}
	return count
}
