package tournament

import (
	"fmt"
	"sort"

	"holdem-platform/pkg/poker"
)

// Status is the tournament lifecycle state
type Status int

const (
	StatusRegistering Status = iota
	StatusRunning
	StatusOnBreak
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusRegistering:
		return "registering"
	case StatusRunning:
		return "running"
	case StatusOnBreak:
		return "on_break"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// BalancingConfig bounds the per-table headcount disparity
type BalancingConfig struct {
	Enabled     bool `json:"enabled"`
	MaxSeatDiff int  `json:"max_seat_diff"`
}

// Config is the tournament configuration, validated on creation
type Config struct {
	Name                 string          `json:"name"`
	StartingStack        poker.Chips     `json:"starting_stack"`
	MinPlayersToStart    int             `json:"min_players_to_start"`
	MaxPlayers           int             `json:"max_players"`
	TableSize            int             `json:"table_size"`
	Freezeout            bool            `json:"freezeout"`
	ReentryAllowed       bool            `json:"reentry_allowed"`
	MaxEntriesPerPlayer  int             `json:"max_entries_per_player"`
	LateRegLevel         uint32          `json:"late_reg_level"` // 0 disables late registration
	ScheduledStartTs     int64           `json:"scheduled_start_ts"`
	AllowStartEarlier    bool            `json:"allow_start_earlier"`
	BreakEveryMinutes    uint32          `json:"break_every_minutes"`
	BreakDurationMinutes uint32          `json:"break_duration_minutes"`
	Balancing            BalancingConfig `json:"balancing"`
	Blinds               BlindStructure  `json:"blinds"`
}

// Validate checks every config invariant
func (c *Config) Validate() error {
	if c.Name == "" {
		return &InvalidConfigError{Reason: "name must not be empty"}
	}
	if c.StartingStack.IsZero() {
		return &InvalidConfigError{Reason: "starting stack must be positive"}
	}
	if c.MinPlayersToStart <= 0 || c.MinPlayersToStart > c.MaxPlayers {
		return &InvalidConfigError{Reason: "min players must be positive and not exceed max players"}
	}
	if c.TableSize < 2 || c.TableSize > 9 {
		return &InvalidConfigError{Reason: "table size must be between 2 and 9"}
	}
	if c.Freezeout != (c.MaxEntriesPerPlayer == 1) {
		return &InvalidConfigError{Reason: "freezeout requires exactly one entry per player"}
	}
	if c.ReentryAllowed && c.MaxEntriesPerPlayer < 2 {
		return &InvalidConfigError{Reason: "re-entry requires at least two entries per player"}
	}
	if c.BreakEveryMinutes == 0 {
		return &InvalidConfigError{Reason: "break interval must be positive"}
	}
	if c.BreakDurationMinutes == 0 {
		return &InvalidConfigError{Reason: "break duration must be positive"}
	}
	if c.Balancing.Enabled {
		if c.Balancing.MaxSeatDiff <= 0 || c.Balancing.MaxSeatDiff >= c.TableSize {
			return &InvalidConfigError{Reason: "max seat diff must be positive and below table size"}
		}
	}
	if err := c.Blinds.Validate(); err != nil {
		return &InvalidConfigError{Reason: err.Error()}
	}
	if c.LateRegLevel != 0 && c.LateRegLevel > c.Blinds.LastLevel() {
		return &InvalidConfigError{Reason: "late registration level is past the blind schedule"}
	}
	return nil
}

// PlayerRegistration carries the tournament-side state of one player
type PlayerRegistration struct {
	PlayerID       uint64      `json:"player_id"`
	EntriesUsed    int         `json:"entries_used"`
	Stack          poker.Chips `json:"stack"`
	IsBusted       bool        `json:"is_busted"`
	TableID        *uint64     `json:"table_id,omitempty"`
	SeatIndex      *int        `json:"seat_index,omitempty"`
	FinishingPlace int         `json:"finishing_place,omitempty"` // 0 until assigned
}

// Tournament is the authoritative multi-table tournament state. Time is
// always an input: every time-dependent transition takes the caller's now_ts, the core never
// reads a clock.
type Tournament struct {
	ID               uint64                         `json:"id"`
	Config           Config                         `json:"config"`
	Status           Status                         `json:"status"`
	Registrations    map[uint64]*PlayerRegistration `json:"registrations"`
	CurrentLevel     uint32                         `json:"current_level"`
	StartedAtTs      int64                          `json:"started_at_ts"`
	LevelStartedAtTs int64                          `json:"level_started_at_ts"`
	BreakStartedAtTs int64                          `json:"break_started_at_ts"`
	TotalEntries     int                            `json:"total_entries"`
	FinishedCount    int                            `json:"finished_count"`
	WinnerID         uint64                         `json:"winner_id,omitempty"`
}

// New creates a tournament in Registering status
func New(id uint64, config Config) (*Tournament, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Tournament{
		ID:            id,
		Config:        config,
		Status:        StatusRegistering,
		Registrations: make(map[uint64]*PlayerRegistration),
	}, nil
}

// ActiveCount counts the registrations still alive
func (t *Tournament) ActiveCount() int {
	count := 0
	for _, reg := range t.Registrations {
		if !reg.IsBusted {
			count++
		}
	}
	return count
}

// ActivePlayerIDs lists alive players in ascending id order for deterministic
// iteration.
func (t *Tournament) ActivePlayerIDs() []uint64 {
	ids := make([]uint64, 0, len(t.Registrations))
	for id, reg := range t.Registrations {
		if !reg.IsBusted {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// registrationOpen reports whether a registration attempt is admissible in
// the current lifecycle state. Late registration keeps the door open while
// the blinds have not passed LateRegLevel.
func (t *Tournament) registrationOpen() bool {
	switch t.Status {
	case StatusRegistering:
		return true
	case StatusRunning, StatusOnBreak:
		return t.Config.LateRegLevel != 0 && t.CurrentLevel <= t.Config.LateRegLevel
	default:
		return false
	}
}

// RegisterPlayer registers a player, or re-enters one that busted when the
// config allows it. A re-entry resets the stack to the starting stack and
// clears seating; the seating pass assigns a table later.
func (t *Tournament) RegisterPlayer(playerID uint64) error {
	if !t.registrationOpen() {
		return ErrRegistrationClosed
	}

	maxEntries := t.Config.MaxEntriesPerPlayer

	if reg, ok := t.Registrations[playerID]; ok {
		if t.Config.Freezeout {
			return ErrAlreadyRegistered
		}
		if !reg.IsBusted {
			return ErrAlreadyRegistered
		}
		if reg.EntriesUsed >= maxEntries {
			return ErrTooManyEntries
		}
		reg.EntriesUsed++
		reg.IsBusted = false
		reg.Stack = t.Config.StartingStack
		reg.TableID = nil
		reg.SeatIndex = nil
		reg.FinishingPlace = 0
		return nil
	}

	if len(t.Registrations) >= t.Config.MaxPlayers {
		return ErrTournamentFull
	}

	t.Registrations[playerID] = &PlayerRegistration{
		PlayerID:    playerID,
		EntriesUsed: 1,
		Stack:       t.Config.StartingStack,
	}
	return nil
}

// UnregisterPlayer withdraws a player before the tournament starts
func (t *Tournament) UnregisterPlayer(playerID uint64) error {
	if t.Status != StatusRegistering {
		return &InvalidStatusError{Expected: StatusRegistering, Found: t.Status}
	}
	if _, ok := t.Registrations[playerID]; !ok {
		return ErrNotRegistered
	}
	delete(t.Registrations, playerID)
	return nil
}

// CanStartNow reports whether the tournament may start at the given time
func (t *Tournament) CanStartNow(nowTs int64) bool {
	if t.Status != StatusRegistering {
		return false
	}
	if t.ActiveCount() < t.Config.MinPlayersToStart {
		return false
	}
	if t.Config.ScheduledStartTs == 0 {
		return true
	}
	return nowTs >= t.Config.ScheduledStartTs || t.Config.AllowStartEarlier
}

// Start transitions to Running, snapshots the entry count and stamps the
// clock. Seating is a separate pass (AssignInitialSeating).
func (t *Tournament) Start(nowTs int64) error {
	if !t.CanStartNow(nowTs) {
		return ErrInvalidStatusForStart
	}
	t.Status = StatusRunning
	t.TotalEntries = t.ActiveCount()
	t.FinishedCount = 0
	t.CurrentLevel = 1
	t.StartedAtTs = nowTs
	t.LevelStartedAtTs = nowTs
	return nil
}

// AssignInitialSeating chunks the active players over tables of TableSize,
// assigning table ids from baseTableID upward. Players are taken in ascending
// id order so the seating is deterministic. Returns the assigned table ids.
func (t *Tournament) AssignInitialSeating(baseTableID uint64) []uint64 {
	ids := t.ActivePlayerIDs()
	tableIDs := make([]uint64, 0, (len(ids)+t.Config.TableSize-1)/t.Config.TableSize)

	next := baseTableID
	for start := 0; start < len(ids); start += t.Config.TableSize {
		end := start + t.Config.TableSize
		if end > len(ids) {
			end = len(ids)
		}
		tableID := next
		tableIDs = append(tableIDs, tableID)

		for seat, playerID := range ids[start:end] {
			reg := t.Registrations[playerID]
			tid := tableID
			s := seat
			reg.TableID = &tid
			reg.SeatIndex = &s
		}
		next++
	}
	return tableIDs
}

// BustPlayer records an elimination. The finishing place counts down from the
// entry snapshot; the last two transitions close the tournament.
func (t *Tournament) BustPlayer(playerID uint64) error {
	if t.Status != StatusRunning && t.Status != StatusOnBreak {
		return &InvalidStatusError{Expected: StatusRunning, Found: t.Status}
	}
	reg, ok := t.Registrations[playerID]
	if !ok {
		return ErrNotRegistered
	}
	if reg.IsBusted {
		return ErrAlreadyBusted
	}
	if t.ActiveCount() <= 1 {
		return ErrCannotBustLastPlayer
	}

	if t.TotalEntries == 0 {
		t.TotalEntries = t.ActiveCount()
	}

	reg.IsBusted = true
	reg.FinishingPlace = t.TotalEntries - t.FinishedCount
	reg.TableID = nil
	reg.SeatIndex = nil
	t.FinishedCount++

	switch t.ActiveCount() {
	case 1:
		t.Status = StatusFinished
		for id, winner := range t.Registrations {
			if !winner.IsBusted {
				t.WinnerID = id
				if winner.FinishingPlace == 0 {
					winner.FinishingPlace = 1
				}
			}
		}
	case 0:
		// Simultaneous elimination in a split all-in: no winner.
		t.Status = StatusFinished
	}
	return nil
}

// CurrentBlinds returns the blind level in play
func (t *Tournament) CurrentBlinds() BlindLevel {
	level := t.CurrentLevel
	if level == 0 {
		level = 1
	}
	return t.Config.Blinds.LevelByNumber(level)
}

// AdvanceLevelManually forces the next blind level, for the tournament
// director. The last level sticks.
func (t *Tournament) AdvanceLevelManually(nowTs int64) (*TickEvent, error) {
	if t.Status != StatusRunning {
		return nil, &InvalidStatusError{Expected: StatusRunning, Found: t.Status}
	}
	if t.CurrentLevel >= t.Config.Blinds.LastLevel() {
		return nil, nil
	}
	from := t.CurrentLevel
	t.CurrentLevel++
	t.LevelStartedAtTs = nowTs
	blinds := t.CurrentBlinds()
	return &TickEvent{Kind: TickLevelAdvanced, FromLevel: from, ToLevel: t.CurrentLevel, NewBlinds: &blinds}, nil
}

// Close finishes the tournament regardless of remaining players
func (t *Tournament) Close() error {
	if t.Status == StatusFinished {
		return &InvalidStatusError{Expected: StatusRunning, Found: t.Status}
	}
	t.Status = StatusFinished
	return nil
}

func (t *Tournament) String() string {
	return fmt.Sprintf("tournament %d (%s, %s, %d players)",
		t.ID, t.Config.Name, t.Status, len(t.Registrations))
}
