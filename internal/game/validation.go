package game

import "holdem-platform/pkg/poker"

// validateAction checks whether the player may perform the action against the
// current betting state. Strict No-Limit rules; the caller has already
// verified that it is this seat's turn.
func validateAction(player *PlayerAtTable, kind ActionKind, amount poker.Chips, betting *BettingState) error {
	if player.Status != PlayerActive {
		return ErrIllegalAction
	}

	toCall := betting.CurrentBet.Sub(player.CurrentBet)

	switch kind {
	case ActionFold:
		return nil

	case ActionCheck:
		if betting.CurrentBet != player.CurrentBet {
			return ErrCannotCheck
		}
		return nil

	case ActionCall:
		// A call that exhausts the stack is accepted as an all-in call.
		if toCall.IsZero() {
			return ErrCannotCall
		}
		return nil

	case ActionBet:
		if !betting.CurrentBet.IsZero() {
			return ErrIllegalAction
		}
		if amount.IsZero() {
			return ErrIllegalAction
		}
		if player.Stack < amount {
			return ErrNotEnoughChips
		}
		return nil

	case ActionRaise:
		if betting.CurrentBet.IsZero() {
			// With no bet in front this is a bet, not a raise.
			return ErrIllegalAction
		}
		if amount <= betting.CurrentBet {
			return ErrIllegalAction
		}
		raiseSize := amount.Sub(betting.CurrentBet)
		if raiseSize < betting.MinRaise {
			return ErrRaiseTooSmall
		}
		diff := amount.Sub(player.CurrentBet)
		if player.Stack < diff {
			return ErrNotEnoughChips
		}
		return nil

	case ActionAllIn:
		if player.Stack.IsZero() {
			return ErrIllegalAction
		}
		return nil

	default:
		return ErrIllegalAction
	}
}
