package tournament

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdem-platform/internal/game"
	"holdem-platform/pkg/poker"
	"holdem-platform/pkg/rng"
)

// Plays a single-table tournament to completion through the table manager:
// every hand is an all-in race, stacks flow back into the registrations and
// busts earn finishing places until one player holds all the chips.
func TestSingleTableTournamentPlaysToAWinner(t *testing.T) {
	config := validConfig()
	config.TableSize = 3
	config.MaxPlayers = 3
	trn, err := New(1, config)
	require.NoError(t, err)

	for id := uint64(1); id <= 3; id++ {
		require.NoError(t, trn.RegisterPlayer(id))
	}
	require.NoError(t, trn.Start(0))
	trn.AssignInitialSeating(1)

	tables, err := trn.BuildTables()
	require.NoError(t, err)
	require.Len(t, tables, 1)

	manager := game.NewTableManager(rng.SeedFromUint64(2024))
	manager.AddTable(tables[0])
	tableID := tables[0].ID

	handID := uint64(0)
	for hands := 0; hands < 200 && trn.Status != StatusFinished; hands++ {
		handID++
		status, err := manager.StartHand(tableID, handID)
		require.NoError(t, err)

		for !status.Finished {
			seat := manager.CurrentActorSeat(tableID)
			require.GreaterOrEqual(t, seat, 0, "an unfinished hand must have an actor")

			table, err := manager.Table(tableID)
			require.NoError(t, err)
			status, err = manager.ApplyAction(tableID, game.PlayerAction{
				PlayerID: table.Seats[seat].PlayerID,
				Seat:     seat,
				Kind:     game.ActionAllIn,
			})
			require.NoError(t, err)
		}

		table, err := manager.Table(tableID)
		require.NoError(t, err)
		for _, playerID := range trn.SyncStacksFromTable(table) {
			require.NoError(t, trn.BustPlayer(playerID))
		}
	}

	require.Equal(t, StatusFinished, trn.Status, "all-in races must crown a winner")
	require.NotZero(t, trn.WinnerID)

	// The winner holds every chip; places run 1..3 exactly once.
	winner := trn.Registrations[trn.WinnerID]
	assert.Equal(t, poker.Chips(30000), winner.Stack)
	assert.Equal(t, 1, winner.FinishingPlace)

	places := make(map[int]int)
	for _, reg := range trn.Registrations {
		places[reg.FinishingPlace]++
	}
	assert.Equal(t, map[int]int{1: 1, 2: 1, 3: 1}, places)
}
