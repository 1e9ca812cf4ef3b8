package tournament

import "sort"

// RebalanceMove relocates one player between tables
type RebalanceMove struct {
	PlayerID  uint64 `json:"player_id"`
	FromTable uint64 `json:"from_table"`
	ToTable   uint64 `json:"to_table"`
}

// RebalancePlan is the ordered list of moves that restores balance, plus the
// resulting per-table occupancy.
type RebalancePlan struct {
	Moves             []RebalanceMove     `json:"moves"`
	FinalDistribution map[uint64][]uint64 `json:"final_distribution"`
}

// occupancyByTable groups active seated players by their table, each table's
// players ordered by seat index so "last-indexed" is well defined.
func (t *Tournament) occupancyByTable() map[uint64][]uint64 {
	type seated struct {
		playerID uint64
		seat     int
	}
	bySeat := make(map[uint64][]seated)
	for _, reg := range t.Registrations {
		if reg.IsBusted || reg.TableID == nil {
			continue
		}
		seat := -1
		if reg.SeatIndex != nil {
			seat = *reg.SeatIndex
		}
		bySeat[*reg.TableID] = append(bySeat[*reg.TableID], seated{playerID: reg.PlayerID, seat: seat})
	}

	result := make(map[uint64][]uint64, len(bySeat))
	for tableID, players := range bySeat {
		sort.Slice(players, func(i, j int) bool {
			if players[i].seat != players[j].seat {
				return players[i].seat < players[j].seat
			}
			return players[i].playerID < players[j].playerID
		})
		ids := make([]uint64, len(players))
		for i, p := range players {
			ids[i] = p.playerID
		}
		result[tableID] = ids
	}
	return result
}

// ComputeRebalancePlan drafts the moves that bound the headcount gap between
// tables to MaxSeatDiff. One player moves at a time, always from the fullest
// table to the emptiest; the donor gives up its last-indexed player so the
// choice is deterministic.
func (t *Tournament) ComputeRebalancePlan() RebalancePlan {
	distribution := t.occupancyByTable()
	plan := RebalancePlan{FinalDistribution: distribution}

	if !t.Config.Balancing.Enabled || len(distribution) <= 1 {
		return plan
	}
	maxDiff := t.Config.Balancing.MaxSeatDiff

	tableIDs := make([]uint64, 0, len(distribution))
	for id := range distribution {
		tableIDs = append(tableIDs, id)
	}
	sort.Slice(tableIDs, func(i, j int) bool { return tableIDs[i] < tableIDs[j] })

	for {
		var minID, maxID uint64
		minCnt, maxCnt := -1, -1
		for _, id := range tableIDs {
			cnt := len(distribution[id])
			if minCnt < 0 || cnt < minCnt {
				minID, minCnt = id, cnt
			}
			if maxCnt < 0 || cnt > maxCnt {
				maxID, maxCnt = id, cnt
			}
		}
		if maxCnt-minCnt <= maxDiff || maxCnt == 0 || minID == maxID {
			break
		}

		from := distribution[maxID]
		playerID := from[len(from)-1]
		distribution[maxID] = from[:len(from)-1]
		distribution[minID] = append(distribution[minID], playerID)

		plan.Moves = append(plan.Moves, RebalanceMove{
			PlayerID:  playerID,
			FromTable: maxID,
			ToTable:   minID,
		})
	}

	return plan
}

// ApplyRebalancePlan commits the moves: moved players point at their new
// table with no seat yet, the destination table re-seats them before its
// next hand.
func (t *Tournament) ApplyRebalancePlan(plan RebalancePlan) {
	for _, move := range plan.Moves {
		reg, ok := t.Registrations[move.PlayerID]
		if !ok || reg.IsBusted {
			continue
		}
		tid := move.ToTable
		reg.TableID = &tid
		reg.SeatIndex = nil
	}
}

// IsBalanced reports whether the current seating honors MaxSeatDiff
func (t *Tournament) IsBalanced() bool {
	distribution := t.occupancyByTable()
	if len(distribution) <= 1 {
		return true
	}
	minCnt, maxCnt := -1, -1
	for _, players := range distribution {
		cnt := len(players)
		if minCnt < 0 || cnt < minCnt {
			minCnt = cnt
		}
		if maxCnt < 0 || cnt > maxCnt {
			maxCnt = cnt
		}
	}
	return maxCnt-minCnt <= t.Config.Balancing.MaxSeatDiff
}
