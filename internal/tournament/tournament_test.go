package tournament

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdem-platform/pkg/poker"
)

func validConfig() Config {
	return Config{
		Name:                 "Daily 10k",
		StartingStack:        10000,
		MinPlayersToStart:    2,
		MaxPlayers:           100,
		TableSize:            9,
		Freezeout:            true,
		MaxEntriesPerPlayer:  1,
		BreakEveryMinutes:    60,
		BreakDurationMinutes: 5,
		Balancing:            BalancingConfig{Enabled: true, MaxSeatDiff: 1},
		Blinds: BlindStructure{Levels: []BlindLevel{
			{Level: 1, SmallBlind: 50, BigBlind: 100, DurationMinutes: 10},
			{Level: 2, SmallBlind: 100, BigBlind: 200, DurationMinutes: 10},
		}},
	}
}

func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty name", func(c *Config) { c.Name = "" }},
		{"zero stack", func(c *Config) { c.StartingStack = 0 }},
		{"zero min players", func(c *Config) { c.MinPlayersToStart = 0 }},
		{"min above max", func(c *Config) { c.MinPlayersToStart = 200 }},
		{"table too small", func(c *Config) { c.TableSize = 1 }},
		{"table too big", func(c *Config) { c.TableSize = 10 }},
		{"freezeout with reentries", func(c *Config) { c.MaxEntriesPerPlayer = 3 }},
		{"reentry with one entry", func(c *Config) {
			c.Freezeout = false
			c.ReentryAllowed = true
			c.MaxEntriesPerPlayer = 1
		}},
		{"zero break interval", func(c *Config) { c.BreakEveryMinutes = 0 }},
		{"zero break duration", func(c *Config) { c.BreakDurationMinutes = 0 }},
		{"seat diff too large", func(c *Config) { c.Balancing.MaxSeatDiff = 9 }},
		{"late reg past schedule", func(c *Config) { c.LateRegLevel = 7 }},
		{"empty blind structure", func(c *Config) { c.Blinds.Levels = nil }},
		{"non-contiguous levels", func(c *Config) { c.Blinds.Levels[1].Level = 5 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			config := validConfig()
			tc.mutate(&config)
			_, err := New(1, config)
			require.Error(t, err)
			var invalid *InvalidConfigError
			assert.ErrorAs(t, err, &invalid)
		})
	}

	_, err := New(1, validConfig())
	require.NoError(t, err)
}

func TestRegistrationLifecycle(t *testing.T) {
	trn, err := New(1, validConfig())
	require.NoError(t, err)

	require.NoError(t, trn.RegisterPlayer(10))
	require.NoError(t, trn.RegisterPlayer(20))
	assert.ErrorIs(t, trn.RegisterPlayer(10), ErrAlreadyRegistered)
	assert.Equal(t, 2, trn.ActiveCount())
	assert.Equal(t, poker.Chips(10000), trn.Registrations[10].Stack)

	require.NoError(t, trn.UnregisterPlayer(20))
	assert.ErrorIs(t, trn.UnregisterPlayer(20), ErrNotRegistered)
	assert.Equal(t, 1, trn.ActiveCount())
}

func TestRegistrationCapacity(t *testing.T) {
	config := validConfig()
	config.MaxPlayers = 2
	trn, err := New(1, config)
	require.NoError(t, err)

	require.NoError(t, trn.RegisterPlayer(1))
	require.NoError(t, trn.RegisterPlayer(2))
	assert.ErrorIs(t, trn.RegisterPlayer(3), ErrTournamentFull)
}

func TestReentryResetsPlayer(t *testing.T) {
	config := validConfig()
	config.Freezeout = false
	config.ReentryAllowed = true
	config.MaxEntriesPerPlayer = 2
	config.LateRegLevel = 1
	trn, err := New(1, config)
	require.NoError(t, err)

	require.NoError(t, trn.RegisterPlayer(1))
	require.NoError(t, trn.RegisterPlayer(2))
	require.NoError(t, trn.RegisterPlayer(3))
	require.NoError(t, trn.Start(0))

	require.NoError(t, trn.BustPlayer(1))
	assert.True(t, trn.Registrations[1].IsBusted)

	// Re-entry during late registration revives the player with a fresh stack.
	require.NoError(t, trn.RegisterPlayer(1))
	reg := trn.Registrations[1]
	assert.False(t, reg.IsBusted)
	assert.Equal(t, poker.Chips(10000), reg.Stack)
	assert.Equal(t, 2, reg.EntriesUsed)
	assert.Nil(t, reg.TableID)
	assert.Zero(t, reg.FinishingPlace)

	// The second bust exhausts the entries.
	require.NoError(t, trn.BustPlayer(1))
	assert.ErrorIs(t, trn.RegisterPlayer(1), ErrTooManyEntries)
}

func TestLateRegistrationWindow(t *testing.T) {
	config := validConfig()
	config.LateRegLevel = 1
	trn, err := New(1, config)
	require.NoError(t, err)

	require.NoError(t, trn.RegisterPlayer(1))
	require.NoError(t, trn.RegisterPlayer(2))
	require.NoError(t, trn.Start(0))

	// Level 1 is still within the late registration window.
	require.NoError(t, trn.RegisterPlayer(3))

	// Past the window the door is closed.
	trn.CurrentLevel = 2
	assert.ErrorIs(t, trn.RegisterPlayer(4), ErrRegistrationClosed)
}

func TestStartPreconditions(t *testing.T) {
	config := validConfig()
	config.MinPlayersToStart = 3
	config.ScheduledStartTs = 1000
	trn, err := New(1, config)
	require.NoError(t, err)

	require.NoError(t, trn.RegisterPlayer(1))
	require.NoError(t, trn.RegisterPlayer(2))
	assert.False(t, trn.CanStartNow(2000), "not enough players")

	require.NoError(t, trn.RegisterPlayer(3))
	assert.False(t, trn.CanStartNow(500), "before the scheduled start")
	assert.True(t, trn.CanStartNow(1000))

	require.NoError(t, trn.Start(1000))
	assert.Equal(t, StatusRunning, trn.Status)
	assert.Equal(t, 3, trn.TotalEntries)
	assert.Equal(t, uint32(1), trn.CurrentLevel)
	assert.Equal(t, int64(1000), trn.StartedAtTs)
	assert.ErrorIs(t, trn.Start(1000), ErrInvalidStatusForStart)
}

func TestInitialSeatingIsDeterministic(t *testing.T) {
	config := validConfig()
	config.TableSize = 3
	trn, err := New(1, config)
	require.NoError(t, err)

	for _, id := range []uint64{42, 7, 99, 13, 27, 5, 61} {
		require.NoError(t, trn.RegisterPlayer(id))
	}
	require.NoError(t, trn.Start(0))

	tableIDs := trn.AssignInitialSeating(100)
	require.Equal(t, []uint64{100, 101, 102}, tableIDs)

	// Players sort ascending, chunk by table size: 5,7,13 / 27,42,61 / 99.
	expect := map[uint64]struct {
		table uint64
		seat  int
	}{
		5: {100, 0}, 7: {100, 1}, 13: {100, 2},
		27: {101, 0}, 42: {101, 1}, 61: {101, 2},
		99: {102, 0},
	}
	for playerID, want := range expect {
		reg := trn.Registrations[playerID]
		require.NotNil(t, reg.TableID, "player %d", playerID)
		assert.Equal(t, want.table, *reg.TableID, "player %d table", playerID)
		assert.Equal(t, want.seat, *reg.SeatIndex, "player %d seat", playerID)
	}

	tables, err := trn.BuildTables()
	require.NoError(t, err)
	require.Len(t, tables, 3)
	assert.Equal(t, 3, tables[0].SeatedCount())
	assert.Equal(t, 1, tables[2].SeatedCount())
	assert.Equal(t, poker.Chips(50), tables[0].Config.Stakes.SmallBlind)
}

func TestBustOrderAssignsFinishingPlaces(t *testing.T) {
	config := validConfig()
	config.MaxPlayers = 9
	trn, err := New(1, config)
	require.NoError(t, err)

	for id := uint64(1); id <= 9; id++ {
		require.NoError(t, trn.RegisterPlayer(id))
	}
	require.NoError(t, trn.Start(0))
	require.Equal(t, 9, trn.TotalEntries)

	expectedPlaces := []int{9, 8, 7, 6, 5, 4, 3, 2}
	for i, id := range []uint64{1, 2, 3, 4, 5, 6, 7, 8} {
		require.NoError(t, trn.BustPlayer(id))
		assert.Equal(t, expectedPlaces[i], trn.Registrations[id].FinishingPlace, "player %d", id)
	}

	assert.Equal(t, StatusFinished, trn.Status)
	assert.Equal(t, uint64(9), trn.WinnerID)
	assert.Equal(t, 1, trn.Registrations[9].FinishingPlace)

	var invalid *InvalidStatusError
	assert.ErrorAs(t, trn.BustPlayer(9), &invalid)
}

func TestBustRejections(t *testing.T) {
	trn, err := New(1, validConfig())
	require.NoError(t, err)
	require.NoError(t, trn.RegisterPlayer(1))
	require.NoError(t, trn.RegisterPlayer(2))
	require.NoError(t, trn.RegisterPlayer(3))

	var invalid *InvalidStatusError
	assert.ErrorAs(t, trn.BustPlayer(1), &invalid)

	require.NoError(t, trn.Start(0))
	assert.ErrorIs(t, trn.BustPlayer(99), ErrNotRegistered)

	require.NoError(t, trn.BustPlayer(1))
	assert.ErrorIs(t, trn.BustPlayer(1), ErrAlreadyBusted)
}

func TestBlindLevelAdvancement(t *testing.T) {
	trn, err := New(1, validConfig())
	require.NoError(t, err)
	require.NoError(t, trn.RegisterPlayer(1))
	require.NoError(t, trn.RegisterPlayer(2))
	require.NoError(t, trn.Start(0))

	// Nine minutes in: still level 1.
	assert.Nil(t, trn.ApplyTimeTick(9*60))
	assert.Equal(t, uint32(1), trn.CurrentLevel)

	// Eleven minutes in: level 2 is due.
	event := trn.ApplyTimeTick(11 * 60)
	require.NotNil(t, event)
	assert.Equal(t, TickLevelAdvanced, event.Kind)
	assert.Equal(t, uint32(1), event.FromLevel)
	assert.Equal(t, uint32(2), event.ToLevel)
	require.NotNil(t, event.NewBlinds)
	assert.Equal(t, poker.Chips(200), event.NewBlinds.BigBlind)
	assert.Equal(t, uint32(2), trn.CurrentLevel)

	// Re-applying the same timestamp is a no-op.
	assert.Nil(t, trn.ApplyTimeTick(11*60))
	assert.Equal(t, uint32(2), trn.CurrentLevel)

	// Past the last level the blinds stick.
	assert.Nil(t, trn.ApplyTimeTick(300*60))
	assert.Equal(t, uint32(2), trn.CurrentLevel)
}

func TestBreakSchedule(t *testing.T) {
	config := validConfig()
	config.BreakEveryMinutes = 10
	config.BreakDurationMinutes = 5
	config.Blinds = BlindStructure{Levels: []BlindLevel{
		{Level: 1, SmallBlind: 50, BigBlind: 100, DurationMinutes: 1000},
	}}
	trn, err := New(1, config)
	require.NoError(t, err)
	require.NoError(t, trn.RegisterPlayer(1))
	require.NoError(t, trn.RegisterPlayer(2))
	require.NoError(t, trn.Start(0))

	assert.Nil(t, trn.ApplyTimeTick(9*60))
	assert.Equal(t, StatusRunning, trn.Status)

	event := trn.ApplyTimeTick(10 * 60)
	require.NotNil(t, event)
	assert.Equal(t, TickBreakStarted, event.Kind)
	assert.Equal(t, StatusOnBreak, trn.Status)

	assert.Nil(t, trn.ApplyTimeTick(12*60))
	assert.Equal(t, StatusOnBreak, trn.Status)

	event = trn.ApplyTimeTick(16 * 60)
	require.NotNil(t, event)
	assert.Equal(t, TickBreakEnded, event.Kind)
	assert.Equal(t, StatusRunning, trn.Status)
	assert.Equal(t, uint32(1), trn.CurrentLevel)
}

func TestTicksIgnoredOutsidePlay(t *testing.T) {
	trn, err := New(1, validConfig())
	require.NoError(t, err)
	require.NoError(t, trn.RegisterPlayer(1))
	require.NoError(t, trn.RegisterPlayer(2))

	assert.Nil(t, trn.ApplyTimeTick(1000), "registering ignores ticks")

	require.NoError(t, trn.Start(0))
	require.NoError(t, trn.Close())
	assert.Nil(t, trn.ApplyTimeTick(100000), "finished ignores ticks")
}

func TestManualLevelAdvance(t *testing.T) {
	trn, err := New(1, validConfig())
	require.NoError(t, err)
	require.NoError(t, trn.RegisterPlayer(1))
	require.NoError(t, trn.RegisterPlayer(2))
	require.NoError(t, trn.Start(0))

	event, err := trn.AdvanceLevelManually(60)
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, uint32(2), trn.CurrentLevel)
	assert.Equal(t, int64(60), trn.LevelStartedAtTs)

	// The schedule tops out at level 2.
	event, err = trn.AdvanceLevelManually(120)
	require.NoError(t, err)
	assert.Nil(t, event)
	assert.Equal(t, uint32(2), trn.CurrentLevel)
}

func TestBustWithTwoLeftCrownsWinner(t *testing.T) {
	trn, err := New(1, validConfig())
	require.NoError(t, err)
	require.NoError(t, trn.RegisterPlayer(1))
	require.NoError(t, trn.RegisterPlayer(2))
	require.NoError(t, trn.Start(0))

	// Busting with two players left finishes the tournament with a winner;
	// the last player can never be busted.
	require.NoError(t, trn.BustPlayer(1))
	assert.Equal(t, StatusFinished, trn.Status)
	assert.Equal(t, uint64(2), trn.WinnerID)
	var invalid *InvalidStatusError
	assert.ErrorAs(t, trn.BustPlayer(2), &invalid)
}

func TestLobbyCreateAndRegister(t *testing.T) {
	lobby := NewLobby()

	id, err := lobby.CreateTournament(validConfig())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	id2, err := lobby.CreateTournament(validConfig())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id2)

	_, err = lobby.Get(99)
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	require.NoError(t, lobby.With(id, func(trn *Tournament) error {
		return trn.RegisterPlayer(7)
	}))
	trn, err := lobby.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 1, trn.ActiveCount())

	bad := validConfig()
	bad.Name = ""
	_, err = lobby.CreateTournament(bad)
	require.Error(t, err)
	assert.Equal(t, []uint64{1, 2}, lobby.IDs())
}
