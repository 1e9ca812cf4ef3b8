package game

import "holdem-platform/pkg/poker"

// HandEngineSnapshot is a pure-data serialization of a HandEngine, enough to
// resume a hand mid-street after a restart.
type HandEngineSnapshot struct {
	TableID       uint64              `json:"table_id"`
	HandID        uint64              `json:"hand_id"`
	Deck          poker.Deck          `json:"deck"`
	Betting       BettingState        `json:"betting"`
	Pot           Pot                 `json:"pot"`
	SidePots      []SidePot           `json:"side_pots"`
	Contributions map[int]poker.Chips `json:"contributions"`
	CurrentActor  int                 `json:"current_actor"`
	History       HandHistory         `json:"history"`
}

// Snapshot freezes the engine into storable data
func (e *HandEngine) Snapshot() *HandEngineSnapshot {
	contributions := make(map[int]poker.Chips, len(e.Contributions))
	for seat, chips := range e.Contributions {
		contributions[seat] = chips
	}

	sidePots := make([]SidePot, len(e.SidePots))
	copy(sidePots, e.SidePots)

	return &HandEngineSnapshot{
		TableID:       e.TableID,
		HandID:        e.HandID,
		Deck:          e.Deck.Clone(),
		Betting:       e.Betting,
		Pot:           e.Pot,
		SidePots:      sidePots,
		Contributions: contributions,
		CurrentActor:  e.CurrentActor,
		History:       e.History.Clone(),
	}
}

// Restore thaws a snapshot back into a live engine
func (s *HandEngineSnapshot) Restore() *HandEngine {
	contributions := make(map[int]poker.Chips, len(s.Contributions))
	for seat, chips := range s.Contributions {
		contributions[seat] = chips
	}

	return &HandEngine{
		TableID:       s.TableID,
		HandID:        s.HandID,
		Deck:          s.Deck.Clone(),
		Betting:       s.Betting,
		Pot:           s.Pot,
		SidePots:      append([]SidePot(nil), s.SidePots...),
		Contributions: contributions,
		CurrentActor:  s.CurrentActor,
		History:       s.History.Clone(),
		evaluator:     poker.NewHandEvaluator(),
	}
}
