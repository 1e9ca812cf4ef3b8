package timectrl

// TimeoutState classifies the result of burning elapsed seconds
type TimeoutState int

const (
	// Ongoing means the player still has time left
	Ongoing TimeoutState = iota
	// UsedExtraTime means bank time was tapped but the player survives
	UsedExtraTime
	// TimedOut means base time and bank are both exhausted
	TimedOut
	// NoActivePlayer means no turn is being timed
	NoActivePlayer
)

func (s TimeoutState) String() string {
	switch s {
	case Ongoing:
		return "ongoing"
	case UsedExtraTime:
		return "used_extra_time"
	case TimedOut:
		return "timed_out"
	case NoActivePlayer:
		return "no_active_player"
	default:
		return "unknown"
	}
}

// ClockResult is the outcome of one elapse call
type ClockResult struct {
	State       TimeoutState
	PlayerID    uint64
	GrantedSecs int
}

// TurnClock times the current player's decision. Base time burns first, then
// bank time in steps of BankStepSecs.
type TurnClock struct {
	currentPlayer       uint64
	hasCurrent          bool
	remainingActionSecs int
	remainingExtraSecs  int
}

// NewTurnClock creates an idle clock
func NewTurnClock() *TurnClock {
	return &TurnClock{}
}

// CurrentPlayer returns the timed player, if any
func (c *TurnClock) CurrentPlayer() (uint64, bool) {
	return c.currentPlayer, c.hasCurrent
}

// RemainingActionSecs returns the base time left this turn
func (c *TurnClock) RemainingActionSecs() int {
	return c.remainingActionSecs
}

// RemainingExtraSecs returns the granted bank time left this turn
func (c *TurnClock) RemainingExtraSecs() int {
	return c.remainingExtraSecs
}

// StartTurn arms the clock for a player with the full base time
func (c *TurnClock) StartTurn(playerID uint64, rules Rules) {
	c.currentPlayer = playerID
	c.hasCurrent = true
	c.remainingActionSecs = rules.BaseActionSecs
	c.remainingExtraSecs = 0
}

// Clear disarms the clock
func (c *TurnClock) Clear() {
	c.currentPlayer = 0
	c.hasCurrent = false
	c.remainingActionSecs = 0
	c.remainingExtraSecs = 0
}

// Elapse burns delta seconds for the current player. Overflow past the base
// time consumes outstanding extra time, then pulls bank steps until the delta
// is absorbed or the bank runs dry.
func (c *TurnClock) Elapse(deltaSecs int, rules Rules, bank *TimeBank) ClockResult {
	if !c.hasCurrent {
		return ClockResult{State: NoActivePlayer}
	}
	playerID := c.currentPlayer
	if deltaSecs <= 0 {
		return ClockResult{State: Ongoing, PlayerID: playerID}
	}

	remaining := deltaSecs

	if c.remainingActionSecs > 0 {
		if remaining < c.remainingActionSecs {
			c.remainingActionSecs -= remaining
			return ClockResult{State: Ongoing, PlayerID: playerID}
		}
		remaining -= c.remainingActionSecs
		c.remainingActionSecs = 0
	}

	grantedTotal := 0
	for {
		if c.remainingExtraSecs > 0 {
			if remaining < c.remainingExtraSecs {
				c.remainingExtraSecs -= remaining
				state := UsedExtraTime
				if grantedTotal == 0 {
					// Running on extra time granted by an earlier tick.
					state = Ongoing
				}
				return ClockResult{State: state, PlayerID: playerID, GrantedSecs: grantedTotal}
			}
			remaining -= c.remainingExtraSecs
			c.remainingExtraSecs = 0
		}

		if remaining == 0 {
			state := Ongoing
			if grantedTotal > 0 {
				state = UsedExtraTime
			}
			return ClockResult{State: state, PlayerID: playerID, GrantedSecs: grantedTotal}
		}

		granted := bank.Grant(playerID, rules.BankStepSecs)
		if granted == 0 {
			return ClockResult{State: TimedOut, PlayerID: playerID, GrantedSecs: grantedTotal}
		}
		grantedTotal += granted
		c.remainingExtraSecs = granted
	}
}
