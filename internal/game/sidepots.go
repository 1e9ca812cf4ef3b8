package game

import (
	"sort"

	"holdem-platform/pkg/poker"
)

// SidePot is one layer of the pot, contested only by the seats whose total
// contribution reached the layer and who had not folded when the pots were
// crystallized. Folded seats still fund layers up to their contribution.
type SidePot struct {
	Amount        poker.Chips `json:"amount"`
	EligibleSeats []int       `json:"eligible_seats"`
}

// ComputeSidePots derives the pot layers from the per-seat contributions over
// the whole hand. folded marks the seats excluded from winning. Pots are
// ordered from the smallest contribution level upward; every chip contributed
// lands in exactly one layer.
func ComputeSidePots(contributions map[int]poker.Chips, folded map[int]bool) []SidePot {
	type entry struct {
		seat   int
		amount poker.Chips
	}

	entries := make([]entry, 0, len(contributions))
	for seat, chips := range contributions {
		if !chips.IsZero() {
			entries = append(entries, entry{seat: seat, amount: chips})
		}
	}
	if len(entries) == 0 {
		return nil
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].amount != entries[j].amount {
			return entries[i].amount < entries[j].amount
		}
		return entries[i].seat < entries[j].seat
	})

	var pots []SidePot
	prevLevel := poker.Chips(0)

	for _, e := range entries {
		if e.amount == prevLevel {
			continue
		}
		levelDiff := e.amount.Sub(prevLevel)

		// Every seat whose contribution reached this level funds the layer;
		// only the non-folded among them can win it.
		funders := 0
		eligible := make([]int, 0, len(entries))
		for _, other := range entries {
			if other.amount >= e.amount {
				funders++
				if !folded[other.seat] {
					eligible = append(eligible, other.seat)
				}
			}
		}
		sort.Ints(eligible)

		amount := poker.Chips(uint64(levelDiff) * uint64(funders))
		if !amount.IsZero() {
			pots = append(pots, SidePot{Amount: amount, EligibleSeats: eligible})
		}
		prevLevel = e.amount
	}

	return pots
}
