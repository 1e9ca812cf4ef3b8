package main

import (
	"context"
	"encoding/hex"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/decred/slog"
	"github.com/gin-gonic/gin"

	"holdem-platform/internal/game"
	"holdem-platform/internal/history"
	"holdem-platform/internal/storage"
	"holdem-platform/internal/storage/postgres"
	"holdem-platform/internal/tournament"
	"holdem-platform/pkg/rng"
)

func main() {
	backend := slog.NewBackend(os.Stderr)
	log := backend.Logger("SRVR")
	log.SetLevel(slog.LevelInfo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seed, err := loadBaseSeed()
	if err != nil {
		log.Errorf("Failed to load base seed: %v", err)
		os.Exit(1)
	}

	store, err := openStore(ctx, log)
	if err != nil {
		log.Errorf("Failed to open store: %v", err)
		os.Exit(1)
	}

	manager := game.NewTableManager(seed)
	if total, err := store.TotalHandsPlayed(ctx); err == nil {
		manager.SetHandIndex(total)
	}

	sink := buildHistorySink(ctx, backend, log)
	if sink != nil {
		manager.AddSink(sink)
	}

	server := NewGameServer(
		backend.Logger("GAME"),
		manager,
		tournament.NewLobby(),
		store,
		game.NewIDGenerator(),
	)
	manager.AddSink(server)

	go server.runShotClock(ctx)

	router := gin.Default()
	server.RegisterRoutes(router)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Infof("Shutting down server...")
		cancel()
		if err := store.SetTotalHandsPlayed(context.Background(), manager.HandIndex()); err != nil {
			log.Warnf("Failed to persist hand counter: %v", err)
		}
		os.Exit(0)
	}()

	port := os.Getenv("GAME_SERVER_PORT")
	if port == "" {
		port = "3002"
	}

	log.Infof("Game server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Errorf("Failed to start server: %v", err)
		os.Exit(1)
	}
}

// loadBaseSeed reads POKER_BASE_SEED (64 hex chars) or draws a fresh one
func loadBaseSeed() (rng.Seed, error) {
	if raw := os.Getenv("POKER_BASE_SEED"); raw != "" {
		decoded, err := hex.DecodeString(raw)
		if err != nil || len(decoded) != 32 {
			return rng.Seed{}, os.ErrInvalid
		}
		var b [32]byte
		copy(b[:], decoded)
		return rng.SeedFromBytes(b), nil
	}
	return rng.NewRandomSeed()
}

// openStore picks PostgreSQL when POSTGRES_DSN is set, in-memory otherwise
func openStore(ctx context.Context, log slog.Logger) (storage.Store, error) {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Infof("POSTGRES_DSN not set, using in-memory store")
		return storage.NewMemoryStore(), nil
	}

	pg, err := postgres.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pg.CreateTables(ctx); err != nil {
		return nil, err
	}
	log.Infof("Connected to PostgreSQL store")
	return pg, nil
}

// buildHistorySink wires Kafka and ClickHouse when configured. The returned
// sink is never nil: with neither backend configured it only records metrics.
func buildHistorySink(ctx context.Context, backend *slog.Backend, log slog.Logger) *history.Sink {
	var producer *history.KafkaProducer
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		p, err := history.NewKafkaProducer(history.DefaultKafkaProducerConfig(strings.Split(brokers, ",")))
		if err != nil {
			log.Warnf("Kafka producer disabled: %v", err)
		} else {
			producer = p
		}
	}

	var analytics *storage.ClickHouseAnalytics
	if host := os.Getenv("CLICKHOUSE_HOST"); host != "" {
		ch, err := storage.NewClickHouseAnalytics(ctx, storage.ClickHouseConfig{
			Host:        host,
			Port:        9000,
			Database:    envOr("CLICKHOUSE_DATABASE", "poker"),
			Username:    envOr("CLICKHOUSE_USER", "default"),
			Password:    os.Getenv("CLICKHOUSE_PASSWORD"),
			ConnTimeout: 5 * time.Second,
		})
		if err != nil {
			log.Warnf("ClickHouse analytics disabled: %v", err)
		} else if err := ch.CreateTables(ctx); err != nil {
			log.Warnf("ClickHouse analytics disabled: %v", err)
		} else {
			analytics = ch
		}
	}

	return history.NewSink(backend.Logger("HIST"), producer, analytics)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
