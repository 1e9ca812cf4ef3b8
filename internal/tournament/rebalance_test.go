package tournament

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seatedTournament(t *testing.T, tableSize int, counts map[uint64][]uint64) *Tournament {
	t.Helper()
	config := validConfig()
	config.TableSize = tableSize
	config.MaxPlayers = 100
	trn, err := New(1, config)
	require.NoError(t, err)

	for tableID, players := range counts {
		for seat, playerID := range players {
			require.NoError(t, trn.RegisterPlayer(playerID))
			reg := trn.Registrations[playerID]
			tid := tableID
			s := seat
			reg.TableID = &tid
			reg.SeatIndex = &s
		}
	}
	trn.Status = StatusRunning
	trn.TotalEntries = trn.ActiveCount()
	return trn
}

func TestRebalanceMovesFromFullestToEmptiest(t *testing.T) {
	trn := seatedTournament(t, 9, map[uint64][]uint64{
		1: {10, 11, 12, 13, 14, 15},
		2: {20, 21},
	})

	plan := trn.ComputeRebalancePlan()
	require.Len(t, plan.Moves, 2)

	// The donor always gives up its last-indexed player.
	assert.Equal(t, RebalanceMove{PlayerID: 15, FromTable: 1, ToTable: 2}, plan.Moves[0])
	assert.Equal(t, RebalanceMove{PlayerID: 14, FromTable: 1, ToTable: 2}, plan.Moves[1])
	assert.Len(t, plan.FinalDistribution[1], 4)
	assert.Len(t, plan.FinalDistribution[2], 4)

	trn.ApplyRebalancePlan(plan)
	assert.True(t, trn.IsBalanced())

	// Moved players lost their seats and point at the new table.
	reg := trn.Registrations[15]
	require.NotNil(t, reg.TableID)
	assert.Equal(t, uint64(2), *reg.TableID)
	assert.Nil(t, reg.SeatIndex)
}

func TestRebalanceNoOpWhenBalanced(t *testing.T) {
	trn := seatedTournament(t, 9, map[uint64][]uint64{
		1: {10, 11, 12},
		2: {20, 21, 22},
	})
	plan := trn.ComputeRebalancePlan()
	assert.Empty(t, plan.Moves)
	assert.True(t, trn.IsBalanced())
}

func TestRebalanceNoOpForSingleTable(t *testing.T) {
	trn := seatedTournament(t, 9, map[uint64][]uint64{
		1: {10, 11, 12, 13, 14, 15, 16, 17},
	})
	plan := trn.ComputeRebalancePlan()
	assert.Empty(t, plan.Moves)
}

func TestRebalanceDisabled(t *testing.T) {
	trn := seatedTournament(t, 9, map[uint64][]uint64{
		1: {10, 11, 12, 13, 14, 15},
		2: {20},
	})
	trn.Config.Balancing.Enabled = false
	plan := trn.ComputeRebalancePlan()
	assert.Empty(t, plan.Moves)
}

func TestRebalanceIsDeterministic(t *testing.T) {
	build := func() RebalancePlan {
		trn := seatedTournament(t, 9, map[uint64][]uint64{
			1: {10, 11, 12, 13, 14},
			2: {20},
			3: {30, 31, 32},
		})
		return trn.ComputeRebalancePlan()
	}

	a := build()
	b := build()
	require.Equal(t, a.Moves, b.Moves)
	require.Equal(t, a.FinalDistribution, b.FinalDistribution)
}

func TestRebalancedSeatingBuildsTables(t *testing.T) {
	trn := seatedTournament(t, 3, map[uint64][]uint64{
		1: {10, 11, 12},
		2: {20},
	})
	plan := trn.ComputeRebalancePlan()
	require.Len(t, plan.Moves, 1)
	trn.ApplyRebalancePlan(plan)

	tables, err := trn.BuildTables()
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, 2, tables[0].SeatedCount())
	assert.Equal(t, 2, tables[1].SeatedCount())
}
