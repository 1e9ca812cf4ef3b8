package timectrl

// AutoAction is what the orchestrator should do on the player's behalf
type AutoAction int

const (
	// AutoNone means no forced action is needed
	AutoNone AutoAction = iota
	// AutoCheckOrFold means the player timed out: check when nothing is owed,
	// fold otherwise. The orchestrator knows the amount to call.
	AutoCheckOrFold
)

// Decision is the controller's advice after time passed
type Decision struct {
	Action   AutoAction
	PlayerID uint64
}

// Controller is the per-table time controller: the shot-clock rules, the
// players' time banks and the live turn clock. It never reads a wall clock;
// elapsed time is always an input.
type Controller struct {
	rules Rules
	bank  *TimeBank
	clock *TurnClock
}

// NewController creates a controller for a timing profile
func NewController(profile Profile) *Controller {
	return NewControllerWithRules(RulesForProfile(profile))
}

// NewControllerWithRules creates a controller with custom rules
func NewControllerWithRules(rules Rules) *Controller {
	return &Controller{
		rules: rules,
		bank:  NewTimeBank(),
		clock: NewTurnClock(),
	}
}

// Rules returns the controller's timing parameters
func (c *Controller) Rules() Rules {
	return c.rules
}

// InitPlayers resets the banks and funds each listed player
func (c *Controller) InitPlayers(playerIDs []uint64) {
	c.bank.Reset()
	c.bank.InitPlayers(c.rules, playerIDs)
}

// StartPlayerTurn arms the clock for the player's decision
func (c *Controller) StartPlayerTurn(playerID uint64) {
	c.clock.StartTurn(playerID, c.rules)
}

// OnManualAction clears the clock when the timed player acted on their own
func (c *Controller) OnManualAction(playerID uint64) {
	if current, ok := c.clock.CurrentPlayer(); ok && current == playerID {
		c.clock.Clear()
	}
}

// ClearTurn disarms the clock unconditionally (hand finished, seat changed)
func (c *Controller) ClearTurn() {
	c.clock.Clear()
}

// OnTimePassed burns elapsed seconds and reports whether an auto-action is
// due. A timed-out player gets auto-check when nothing is owed, else
// auto-fold; that translation is the orchestrator's job.
func (c *Controller) OnTimePassed(deltaSecs int) Decision {
	result := c.clock.Elapse(deltaSecs, c.rules, c.bank)
	switch result.State {
	case TimedOut:
		c.clock.Clear()
		return Decision{Action: AutoCheckOrFold, PlayerID: result.PlayerID}
	default:
		return Decision{Action: AutoNone, PlayerID: result.PlayerID}
	}
}

// RemainingBankFor returns a player's time-bank balance
func (c *Controller) RemainingBankFor(playerID uint64) int {
	return c.bank.RemainingFor(playerID)
}

// RemainingTurnSecs returns base+extra seconds left on the live turn
func (c *Controller) RemainingTurnSecs() int {
	return c.clock.RemainingActionSecs() + c.clock.RemainingExtraSecs()
}
