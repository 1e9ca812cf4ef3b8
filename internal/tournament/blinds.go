package tournament

import (
	"fmt"

	"holdem-platform/internal/game"
	"holdem-platform/pkg/poker"
)

// BlindLevel is one step of the blind schedule
type BlindLevel struct {
	Level           uint32        `json:"level"`
	SmallBlind      poker.Chips   `json:"small_blind"`
	BigBlind        poker.Chips   `json:"big_blind"`
	Ante            poker.Chips   `json:"ante"`
	AnteType        game.AnteType `json:"ante_type"`
	DurationMinutes uint32        `json:"duration_minutes"`
}

// BlindStructure is the full tournament schedule: a nonempty, 1-indexed,
// contiguous sequence of levels. Past the last level the blinds stop growing.
type BlindStructure struct {
	Levels []BlindLevel `json:"levels"`
}

// Validate checks the structural invariants of the schedule
func (s *BlindStructure) Validate() error {
	if len(s.Levels) == 0 {
		return fmt.Errorf("blind structure must have at least one level")
	}
	for i, level := range s.Levels {
		if level.Level != uint32(i+1) {
			return fmt.Errorf("blind levels must be contiguous and 1-indexed, level %d has number %d", i+1, level.Level)
		}
		if level.BigBlind.IsZero() {
			return fmt.Errorf("level %d: big blind must be positive", level.Level)
		}
		if level.DurationMinutes == 0 {
			return fmt.Errorf("level %d: duration must be positive", level.Level)
		}
	}
	return nil
}

// LevelByNumber returns the level with the given number, or the last level
// when the number runs past the schedule.
func (s *BlindStructure) LevelByNumber(number uint32) BlindLevel {
	for _, l := range s.Levels {
		if l.Level == number {
			return l
		}
	}
	return s.Levels[len(s.Levels)-1]
}

// LastLevel returns the final level of the schedule
func (s *BlindStructure) LastLevel() uint32 {
	return s.Levels[len(s.Levels)-1].Level
}

// LevelForElapsedMinutes walks the schedule accumulating durations; the first
// level whose cumulative duration exceeds the elapsed time wins. Beyond the
// last level, the last level sticks.
func (s *BlindStructure) LevelForElapsedMinutes(minutes uint64) BlindLevel {
	var acc uint64
	for _, level := range s.Levels {
		acc += uint64(level.DurationMinutes)
		if minutes < acc {
			return level
		}
	}
	return s.Levels[len(s.Levels)-1]
}

// DefaultBlindStructure is a small two-level schedule used by tests and the
// dev server.
func DefaultBlindStructure() BlindStructure {
	return BlindStructure{Levels: []BlindLevel{
		{Level: 1, SmallBlind: 25, BigBlind: 50, DurationMinutes: 10},
		{Level: 2, SmallBlind: 50, BigBlind: 100, DurationMinutes: 10},
	}}
}
