// Package repository selects and opens the configured session store
package repository

import (
	"context"
	"fmt"
	"io"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/config"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/domain"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/repository/memory"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/repository/mongo"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/repository/postgres"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/repository/sqlstore"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var noopCloser = closerFunc(func() error { return nil })

// Open connects the session store named by cfg.Driver. The closer releases
// the underlying connection.
func Open(ctx context.Context, cfg config.StoreConfig) (domain.SessionRepository, io.Closer, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, err := mongo.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, fmt.Errorf("mongo: %w", err)
		}
		repo := mongo.NewSessionRepository(client, cfg.Mongo.Database, cfg.Mongo.Collection)
		return repo, closerFunc(func() error { return client.Disconnect(context.Background()) }), nil

	case config.DriverPostgres:
		db, err := postgres.NewDB(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		return db.Sessions(), db, nil

	case config.DriverMySQL:
		db, err := sqlstore.OpenMySQL(ctx, cfg.MySQL.DSN)
		if err != nil {
			return nil, nil, err
		}
		return sqlstore.NewSessionRepository(db, sqlstore.MySQL), db, nil

	case config.DriverSQLite:
		db, err := sqlstore.OpenSQLite(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return sqlstore.NewSessionRepository(db, sqlstore.SQLite), db, nil

	case config.DriverMemory:
		return memory.NewSessionRepository(), noopCloser, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
