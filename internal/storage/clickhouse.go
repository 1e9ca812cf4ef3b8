package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"holdem-platform/internal/game"
)

// ClickHouseConfig holds ClickHouse connection configuration
type ClickHouseConfig struct {
	Host        string
	Port        int
	Database    string
	Username    string
	Password    string
	ConnTimeout time.Duration
}

// ClickHouseAnalytics stores finished hands and their event streams for
// offline analysis. Writes are batched per hand; the engine never waits on
// ClickHouse inside a command.
type ClickHouseAnalytics struct {
	db clickhouse.Conn
}

// NewClickHouseAnalytics connects to ClickHouse and verifies the connection
func NewClickHouseAnalytics(ctx context.Context, config ClickHouseConfig) (*ClickHouseAnalytics, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", config.Host, config.Port)},
		Auth: clickhouse.Auth{
			Database: config.Database,
			Username: config.Username,
			Password: config.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: config.ConnTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseAnalytics{db: conn}, nil
}

// CreateTables creates the analytics tables if they don't exist
func (ch *ClickHouseAnalytics) CreateTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS hand_results (
			hand_id UInt64,
			table_id UInt64,
			player_id UInt64,
			seat Int32,
			won_chips UInt64,
			is_winner UInt8,
			rank_value UInt32,
			street_reached String,
			total_pot UInt64,
			finished_at DateTime64(3)
		) ENGINE = ReplacingMergeTree(finished_at)
		ORDER BY (hand_id, player_id)`,

		`CREATE TABLE IF NOT EXISTS hand_events (
			hand_id UInt64,
			table_id UInt64,
			event_index UInt32,
			event_kind String,
			seat Int32,
			player_id UInt64,
			amount UInt64,
			pot_after UInt64,
			street String,
			finished_at DateTime64(3)
		) ENGINE = MergeTree()
		ORDER BY (hand_id, event_index)`,
	}

	for _, query := range queries {
		if err := ch.db.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to create analytics tables: %w", err)
		}
	}
	return nil
}

// StoreFinishedHand batch-inserts the per-player results and the event stream
// of one finished hand.
func (ch *ClickHouseAnalytics) StoreFinishedHand(ctx context.Context, summary *game.HandSummary, history *game.HandHistory) error {
	now := time.Now().UTC()

	resultsBatch, err := ch.db.PrepareBatch(ctx, "INSERT INTO hand_results")
	if err != nil {
		return fmt.Errorf("prepare hand_results batch: %w", err)
	}
	for _, res := range summary.Results {
		if err := resultsBatch.Append(
			summary.HandID,
			summary.TableID,
			res.PlayerID,
			int32(res.Seat),
			uint64(res.WonChips),
			boolToUint8(res.IsWinner),
			res.RankValue,
			summary.StreetReached.String(),
			uint64(summary.TotalPot),
			now,
		); err != nil {
			return fmt.Errorf("append hand result: %w", err)
		}
	}
	if err := resultsBatch.Send(); err != nil {
		return fmt.Errorf("send hand_results batch: %w", err)
	}

	eventsBatch, err := ch.db.PrepareBatch(ctx, "INSERT INTO hand_events")
	if err != nil {
		return fmt.Errorf("prepare hand_events batch: %w", err)
	}
	for _, ev := range history.Events {
		if err := eventsBatch.Append(
			summary.HandID,
			summary.TableID,
			ev.Index,
			string(ev.Kind),
			int32(ev.Seat),
			ev.PlayerID,
			uint64(ev.Amount),
			uint64(ev.PotAfter),
			ev.Street.String(),
			now,
		); err != nil {
			return fmt.Errorf("append hand event: %w", err)
		}
	}
	if err := eventsBatch.Send(); err != nil {
		return fmt.Errorf("send hand_events batch: %w", err)
	}

	return nil
}

// Close releases the connection
func (ch *ClickHouseAnalytics) Close() error {
	return ch.db.Close()
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
