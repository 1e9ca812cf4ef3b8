package game

import "holdem-platform/pkg/poker"

// BettingState tracks one street's betting round.
// CurrentBet is the highest matched amount on this street, MinRaise the
// minimum raise increment on top of it. ToAct is the ordered queue of seats
// that still owe an action; the round is complete when it drains.
type BettingState struct {
	Street        Street      `json:"street"`
	CurrentBet    poker.Chips `json:"current_bet"`
	MinRaise      poker.Chips `json:"min_raise"`
	LastAggressor int         `json:"last_aggressor"` // -1 when nobody has bet
	ToAct         []int       `json:"to_act"`
}

// NewBettingState opens a betting round for a street
func NewBettingState(street Street, currentBet, minRaise poker.Chips, toAct []int) BettingState {
	return BettingState{
		Street:        street,
		CurrentBet:    currentBet,
		MinRaise:      minRaise,
		LastAggressor: -1,
		ToAct:         toAct,
	}
}

// MarkActed removes the seat from the to-act queue
func (b *BettingState) MarkActed(seat int) {
	kept := b.ToAct[:0]
	for _, s := range b.ToAct {
		if s != seat {
			kept = append(kept, s)
		}
	}
	b.ToAct = kept
}

// OnRaise records a bet or raise: the new target, the new minimum raise and a
// rebuilt to-act queue starting after the aggressor.
func (b *BettingState) OnRaise(seat int, newBet, raiseSize poker.Chips, newToAct []int) {
	b.CurrentBet = newBet
	b.MinRaise = raiseSize
	b.LastAggressor = seat
	b.ToAct = newToAct
}

// IsRoundComplete reports whether every seat has acted this street
func (b *BettingState) IsRoundComplete() bool {
	return len(b.ToAct) == 0
}

// Contains reports whether the seat still owes an action
func (b *BettingState) Contains(seat int) bool {
	for _, s := range b.ToAct {
		if s == seat {
			return true
		}
	}
	return false
}
