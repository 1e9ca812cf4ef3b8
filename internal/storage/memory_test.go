package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdem-platform/internal/game"
	"holdem-platform/internal/tournament"
	"holdem-platform/pkg/poker"
	"holdem-platform/pkg/rng"
)

func TestMemoryStoreTableRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	missing, err := store.LoadTable(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, missing)

	table, err := game.NewTable(1, "round-trip", game.TableConfig{
		MaxSeats:  6,
		TableType: game.TableCash,
		Stakes:    game.TableStakes{SmallBlind: 5, BigBlind: 10},
	})
	require.NoError(t, err)
	require.NoError(t, table.SeatPlayer(2, 77, poker.Chips(1000)))
	require.NoError(t, store.SaveTable(ctx, table))

	loaded, err := store.LoadTable(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, table.Name, loaded.Name)
	require.NotNil(t, loaded.Seats[2])
	assert.Equal(t, uint64(77), loaded.Seats[2].PlayerID)

	// Loads hand out independent copies.
	loaded.Seats[2].Stack = 0
	again, err := store.LoadTable(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, poker.Chips(1000), again.Seats[2].Stack)

	ids, err := store.ListTableIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, ids)
}

func TestMemoryStoreActiveHandRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	table, err := game.NewTable(3, "snapshot", game.TableConfig{
		MaxSeats:  9,
		TableType: game.TableCash,
		Stakes:    game.TableStakes{SmallBlind: 50, BigBlind: 100},
	})
	require.NoError(t, err)
	require.NoError(t, table.SeatPlayer(0, 1, poker.Chips(10000)))
	require.NoError(t, table.SeatPlayer(1, 2, poker.Chips(10000)))

	system, err := rng.NewSystem(rng.SeedFromUint64(11))
	require.NoError(t, err)
	engine, err := game.StartHand(table, system, 5)
	require.NoError(t, err)

	require.NoError(t, store.SaveActiveHand(ctx, 3, engine.Snapshot()))

	loaded, err := store.LoadActiveHand(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, uint64(5), loaded.HandID)
	assert.Equal(t, engine.CurrentActor, loaded.CurrentActor)
	assert.Equal(t, engine.Pot.Total, loaded.Pot.Total)
	assert.Equal(t, len(engine.History.Events), len(loaded.History.Events))

	restored := loaded.Restore()
	assert.Equal(t, engine.Betting.ToAct, restored.Betting.ToAct)

	// Clearing removes the snapshot.
	require.NoError(t, store.SaveActiveHand(ctx, 3, nil))
	cleared, err := store.LoadActiveHand(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, cleared)
}

func TestMemoryStoreTournamentAndCounters(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	config := tournament.Config{
		Name:                 "Sunday Major",
		StartingStack:        20000,
		MinPlayersToStart:    2,
		MaxPlayers:           10,
		TableSize:            9,
		Freezeout:            true,
		MaxEntriesPerPlayer:  1,
		BreakEveryMinutes:    60,
		BreakDurationMinutes: 5,
		Blinds:               tournament.DefaultBlindStructure(),
	}
	trn, err := tournament.New(4, config)
	require.NoError(t, err)
	require.NoError(t, trn.RegisterPlayer(9))
	require.NoError(t, store.SaveTournament(ctx, trn))

	loaded, err := store.LoadTournament(ctx, 4)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Sunday Major", loaded.Config.Name)
	assert.Equal(t, 1, loaded.ActiveCount())

	total, err := store.TotalHandsPlayed(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
	require.NoError(t, store.SetTotalHandsPlayed(ctx, 42))
	total, err = store.TotalHandsPlayed(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), total)

	name, err := store.PlayerName(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, name)
	require.NoError(t, store.SetPlayerName(ctx, 9, "hero"))
	name, err = store.PlayerName(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "hero", name)
}
