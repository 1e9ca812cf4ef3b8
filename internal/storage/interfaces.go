package storage

import (
	"context"

	"holdem-platform/internal/game"
	"holdem-platform/internal/tournament"
)

// Store is the abstract persistence façade the core is defined against.
// The layout mirrors the engine's state: tables, active hand snapshots per
// table, tournaments, the global hand counter and the player name directory.
type Store interface {
	// Load a table; (nil, nil) when absent
	LoadTable(ctx context.Context, tableID uint64) (*game.Table, error)

	// Save a table
	SaveTable(ctx context.Context, table *game.Table) error

	// List all stored table ids in ascending order
	ListTableIDs(ctx context.Context) ([]uint64, error)

	// Load the active hand snapshot for a table; (nil, nil) when none
	LoadActiveHand(ctx context.Context, tableID uint64) (*game.HandEngineSnapshot, error)

	// Save or clear (nil snapshot) the active hand for a table
	SaveActiveHand(ctx context.Context, tableID uint64, snapshot *game.HandEngineSnapshot) error

	// Load a tournament; (nil, nil) when absent
	LoadTournament(ctx context.Context, tournamentID uint64) (*tournament.Tournament, error)

	// Save a tournament
	SaveTournament(ctx context.Context, t *tournament.Tournament) error

	// Read the global hand counter
	TotalHandsPlayed(ctx context.Context) (uint64, error)

	// Overwrite the global hand counter
	SetTotalHandsPlayed(ctx context.Context, total uint64) error

	// Resolve a player's display name; empty when unknown
	PlayerName(ctx context.Context, playerID uint64) (string, error)

	// Store a player's display name
	SetPlayerName(ctx context.Context, playerID uint64, name string) error
}
