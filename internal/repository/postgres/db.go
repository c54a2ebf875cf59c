package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/config"
)

const (
	applicationName   = "tradechat"
	healthCheckPeriod = 30 * time.Second
	connectTimeout    = 10 * time.Second
)

// DB is the pgx pool behind the postgres session store
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB opens the pool and pings it within connectTimeout. Pool bounds from
// the config apply only when positive.
func NewDB(ctx context.Context, cfg config.PostgresConfig) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("invalid postgres settings for %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	poolConfig.ConnConfig.RuntimeParams["application_name"] = applicationName
	poolConfig.HealthCheckPeriod = healthCheckPeriod
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("session store %s unreachable: %w", cfg.Database, err)
	}

	return &DB{Pool: pool}, nil
}

// Sessions returns the session repository on this pool
func (db *DB) Sessions() *SessionRepository {
	return NewSessionRepository(db.Pool)
}

func (db *DB) Close() error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	return nil
}
