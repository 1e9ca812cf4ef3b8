package tournament

import (
	"fmt"
	"sort"

	"holdem-platform/internal/game"
)

// BuildTables materializes the tournament's seating into game tables at the
// current blind level. Each table gets the tournament stakes and its seated
// players with their tournament stacks. Call after AssignInitialSeating or
// after applying a rebalance plan; players without a seat index are placed in
// the lowest free seats of their table.
func (t *Tournament) BuildTables() ([]*game.Table, error) {
	blinds := t.CurrentBlinds()
	config := game.TableConfig{
		MaxSeats:  t.Config.TableSize,
		TableType: game.TableTournament,
		Stakes: game.TableStakes{
			SmallBlind: blinds.SmallBlind,
			BigBlind:   blinds.BigBlind,
			Ante:       blinds.Ante,
			AnteType:   blinds.AnteType,
		},
	}

	byTable := make(map[uint64][]*PlayerRegistration)
	for _, reg := range t.Registrations {
		if reg.IsBusted || reg.TableID == nil {
			continue
		}
		byTable[*reg.TableID] = append(byTable[*reg.TableID], reg)
	}

	tableIDs := make([]uint64, 0, len(byTable))
	for id := range byTable {
		tableIDs = append(tableIDs, id)
	}
	sort.Slice(tableIDs, func(i, j int) bool { return tableIDs[i] < tableIDs[j] })

	tables := make([]*game.Table, 0, len(tableIDs))
	for n, tableID := range tableIDs {
		name := fmt.Sprintf("T%d-Table%d", t.ID, n+1)
		table, err := game.NewTable(tableID, name, config)
		if err != nil {
			return nil, err
		}

		regs := byTable[tableID]
		sort.Slice(regs, func(i, j int) bool { return regs[i].PlayerID < regs[j].PlayerID })

		// Seated players keep their seats; transfers take the lowest free one.
		taken := make(map[int]bool, len(regs))
		for _, reg := range regs {
			if reg.SeatIndex != nil {
				taken[*reg.SeatIndex] = true
			}
		}
		nextFree := func() int {
			for seat := 0; seat < t.Config.TableSize; seat++ {
				if !taken[seat] {
					taken[seat] = true
					return seat
				}
			}
			return -1
		}

		for _, reg := range regs {
			seat := -1
			if reg.SeatIndex != nil {
				seat = *reg.SeatIndex
			} else {
				seat = nextFree()
				if seat >= 0 {
					s := seat
					reg.SeatIndex = &s
				}
			}
			if seat < 0 {
				continue
			}
			if err := table.SeatPlayer(seat, reg.PlayerID, reg.Stack); err != nil {
				return nil, fmt.Errorf("seat player %d at table %d: %w", reg.PlayerID, tableID, err)
			}
		}

		tables = append(tables, table)
	}

	return tables, nil
}

// SyncStacksFromTable copies post-hand stacks from a game table back into the
// registrations and reports which players busted during the hand, in seat
// order. The tournament layer turns those into BustPlayer calls.
func (t *Tournament) SyncStacksFromTable(table *game.Table) []uint64 {
	var busted []uint64
	for _, p := range table.Seats {
		if p == nil {
			continue
		}
		reg, ok := t.Registrations[p.PlayerID]
		if !ok || reg.IsBusted {
			continue
		}
		reg.Stack = p.Stack
		if p.Stack.IsZero() {
			busted = append(busted, p.PlayerID)
		}
	}
	return busted
}
