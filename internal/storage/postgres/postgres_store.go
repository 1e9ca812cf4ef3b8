package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"holdem-platform/internal/game"
	"holdem-platform/internal/tournament"
)

// Store implements the storage façade on PostgreSQL. Engine state is written
// as JSONB blobs keyed by id: the state is an opaque snapshot to the
// database, all invariants live in the core.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to PostgreSQL and verifies the connection
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// CreateTables creates the engine's tables if they don't exist
func (s *Store) CreateTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS poker_tables (
			table_id BIGINT PRIMARY KEY,
			data JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS active_hands (
			table_id BIGINT PRIMARY KEY,
			data JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS tournaments (
			tournament_id BIGINT PRIMARY KEY,
			data JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS engine_counters (
			name TEXT PRIMARY KEY,
			value BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS player_names (
			player_id BIGINT PRIMARY KEY,
			name TEXT NOT NULL
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create storage tables: %w", err)
		}
	}
	return nil
}

func (s *Store) LoadTable(ctx context.Context, tableID uint64) (*game.Table, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM poker_tables WHERE table_id = $1`, int64(tableID)).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load table %d: %w", tableID, err)
	}
	var table game.Table
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("decode table %d: %w", tableID, err)
	}
	return &table, nil
}

func (s *Store) SaveTable(ctx context.Context, table *game.Table) error {
	raw, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("encode table %d: %w", table.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO poker_tables (table_id, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (table_id) DO UPDATE SET data = $2, updated_at = now()
	`, int64(table.ID), raw)
	if err != nil {
		return fmt.Errorf("save table %d: %w", table.ID, err)
	}
	return nil
}

func (s *Store) ListTableIDs(ctx context.Context) ([]uint64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT table_id FROM poker_tables ORDER BY table_id`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan table id: %w", err)
		}
		ids = append(ids, uint64(id))
	}
	return ids, rows.Err()
}

func (s *Store) LoadActiveHand(ctx context.Context, tableID uint64) (*game.HandEngineSnapshot, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM active_hands WHERE table_id = $1`, int64(tableID)).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load active hand for table %d: %w", tableID, err)
	}
	var snapshot game.HandEngineSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("decode active hand for table %d: %w", tableID, err)
	}
	return &snapshot, nil
}

func (s *Store) SaveActiveHand(ctx context.Context, tableID uint64, snapshot *game.HandEngineSnapshot) error {
	if snapshot == nil {
		_, err := s.db.ExecContext(ctx,
			`DELETE FROM active_hands WHERE table_id = $1`, int64(tableID))
		if err != nil {
			return fmt.Errorf("clear active hand for table %d: %w", tableID, err)
		}
		return nil
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode active hand for table %d: %w", tableID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO active_hands (table_id, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (table_id) DO UPDATE SET data = $2, updated_at = now()
	`, int64(tableID), raw)
	if err != nil {
		return fmt.Errorf("save active hand for table %d: %w", tableID, err)
	}
	return nil
}

func (s *Store) LoadTournament(ctx context.Context, tournamentID uint64) (*tournament.Tournament, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM tournaments WHERE tournament_id = $1`, int64(tournamentID)).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load tournament %d: %w", tournamentID, err)
	}
	var t tournament.Tournament
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode tournament %d: %w", tournamentID, err)
	}
	return &t, nil
}

func (s *Store) SaveTournament(ctx context.Context, t *tournament.Tournament) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode tournament %d: %w", t.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tournaments (tournament_id, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (tournament_id) DO UPDATE SET data = $2, updated_at = now()
	`, int64(t.ID), raw)
	if err != nil {
		return fmt.Errorf("save tournament %d: %w", t.ID, err)
	}
	return nil
}

func (s *Store) TotalHandsPlayed(ctx context.Context) (uint64, error) {
	var value int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM engine_counters WHERE name = 'total_hands_played'`).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load hand counter: %w", err)
	}
	return uint64(value), nil
}

func (s *Store) SetTotalHandsPlayed(ctx context.Context, total uint64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO engine_counters (name, value)
		VALUES ('total_hands_played', $1)
		ON CONFLICT (name) DO UPDATE SET value = $1
	`, int64(total))
	if err != nil {
		return fmt.Errorf("save hand counter: %w", err)
	}
	return nil
}

func (s *Store) PlayerName(ctx context.Context, playerID uint64) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM player_names WHERE player_id = $1`, int64(playerID)).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load player name %d: %w", playerID, err)
	}
	return name, nil
}

func (s *Store) SetPlayerName(ctx context.Context, playerID uint64, name string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO player_names (player_id, name)
		VALUES ($1, $2)
		ON CONFLICT (player_id) DO UPDATE SET name = $2
	`, int64(playerID), name)
	if err != nil {
		return fmt.Errorf("save player name %d: %w", playerID, err)
	}
	return nil
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	return s.db.Close()
}
