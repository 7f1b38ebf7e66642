package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/khryptorgraphics/nonaxiomatic/internal/config"
)

// Manager owns the Postgres and Redis connections backing snapshot
// persistence (spec §4.7): Postgres holds the durable JSONB snapshot rows;
// Redis holds the records written by Repository's concept-cache and
// overflow-cache helpers, which no other package calls.
type Manager struct {
	DB     *sqlx.DB
	Redis  *redis.Client
	logger *slog.Logger
}

// NewManager connects to Postgres and Redis and returns a ready Manager.
func NewManager(cfg *config.DatabaseConfig, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = 25
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = 5
	}
	connMaxLifetime := cfg.ConnMaxLifetime
	if connMaxLifetime == 0 {
		connMaxLifetime = 30 * time.Minute
	}

	db, err := sqlx.Connect("postgres", cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("snapshot: connect postgres: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("snapshot: ping postgres: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	rctx, rcancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer rcancel()
	if err := rdb.Ping(rctx).Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("snapshot: ping redis: %w", err)
	}

	if err := ensureSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("snapshot: ensure schema: %w", err)
	}

	logger.Info("snapshot manager connected", "redis_addr", cfg.RedisAddr)

	return &Manager{DB: db, Redis: rdb, logger: logger}, nil
}

// ensureSchema creates the snapshot table if it does not already exist, so
// a fresh deployment does not require a separate migration step.
func ensureSchema(ctx context.Context, db *sqlx.DB) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS snapshots (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			nar_id     TEXT NOT NULL,
			body       JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_snapshots_nar_id_created_at
			ON snapshots (nar_id, created_at DESC);
	`
	_, err := db.ExecContext(ctx, ddl)
	return err
}

// Close releases the Postgres and Redis connections.
func (m *Manager) Close() error {
	var errs []error
	if m.DB != nil {
		if err := m.DB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if m.Redis != nil {
		if err := m.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("snapshot: errors closing connections: %v", errs)
	}
	return nil
}

// Health reports whether both backing stores are reachable.
func (m *Manager) Health(ctx context.Context) error {
	if err := m.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("snapshot: postgres unhealthy: %w", err)
	}
	if err := m.Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("snapshot: redis unhealthy: %w", err)
	}
	return nil
}
