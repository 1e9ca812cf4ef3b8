package game

import "holdem-platform/pkg/poker"

// PlayerAtTableDto is the public projection of one seat
type PlayerAtTableDto struct {
	PlayerID    uint64       `json:"player_id"`
	DisplayName string       `json:"display_name"`
	SeatIndex   int          `json:"seat_index"`
	Stack       poker.Chips  `json:"stack"`
	CurrentBet  poker.Chips  `json:"current_bet"`
	Status      string       `json:"status"`
	HoleCards   []poker.Card `json:"hole_cards,omitempty"`
}

// TableViewDto is the public projection of a table. Hole cards are included
// only for seats the caller is allowed to see.
type TableViewDto struct {
	TableID          uint64             `json:"table_id"`
	Name             string             `json:"name"`
	MaxSeats         int                `json:"max_seats"`
	SmallBlind       poker.Chips        `json:"small_blind"`
	BigBlind         poker.Chips        `json:"big_blind"`
	Ante             poker.Chips        `json:"ante"`
	Street           string             `json:"street"`
	DealerButton     *int               `json:"dealer_button,omitempty"`
	TotalPot         poker.Chips        `json:"total_pot"`
	Board            []poker.Card       `json:"board"`
	Players          []PlayerAtTableDto `json:"players"`
	HandInProgress   bool               `json:"hand_in_progress"`
	CurrentActorSeat *int               `json:"current_actor_seat,omitempty"`
}

// BuildTableView projects a table (plus its live engine, when a hand is
// running) into the query DTO. resolveName maps player ids to display names;
// isHero decides whose hole cards are visible.
func BuildTableView(table *Table, engine *HandEngine, resolveName func(uint64) string, isHero func(uint64) bool) TableViewDto {
	players := make([]PlayerAtTableDto, 0, len(table.Seats))
	for seat, p := range table.Seats {
		if p == nil {
			continue
		}
		dto := PlayerAtTableDto{
			PlayerID:    p.PlayerID,
			DisplayName: resolveName(p.PlayerID),
			SeatIndex:   seat,
			Stack:       p.Stack,
			CurrentBet:  p.CurrentBet,
			Status:      p.Status.String(),
		}
		if isHero(p.PlayerID) {
			dto.HoleCards = append([]poker.Card(nil), p.HoleCards...)
		}
		players = append(players, dto)
	}

	view := TableViewDto{
		TableID:        table.ID,
		Name:           table.Name,
		MaxSeats:       table.Config.MaxSeats,
		SmallBlind:     table.Config.Stakes.SmallBlind,
		BigBlind:       table.Config.Stakes.BigBlind,
		Ante:           table.Config.Stakes.Ante,
		Street:         table.Street.String(),
		TotalPot:       table.TotalPot,
		Board:          append([]poker.Card(nil), table.Board...),
		Players:        players,
		HandInProgress: table.HandInProgress,
	}

	if table.DealerButton >= 0 {
		button := table.DealerButton
		view.DealerButton = &button
	}
	if engine != nil && engine.CurrentActor >= 0 {
		actor := engine.CurrentActor
		view.CurrentActorSeat = &actor
	}

	return view
}
