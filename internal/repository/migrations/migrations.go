// Package migrations holds the embedded schema migrations for every SQL and
// document store driver and runs them with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/config"
)

//go:embed postgres/*.sql mysql/*.sql sqlite/*.sql mongo/*.json
var files embed.FS

// ErrNoMigrations is returned for drivers without a schema
var ErrNoMigrations = errors.New("driver has no migrations")

// Target is a migration source directory paired with a database URL
type Target struct {
	Dir         string
	DatabaseURL string
}

// TargetFor resolves the migration target for the configured store
func TargetFor(cfg config.StoreConfig) (Target, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return Target{Dir: "postgres", DatabaseURL: cfg.Postgres.DSN()}, nil
	case config.DriverMySQL:
		return Target{Dir: "mysql", DatabaseURL: "mysql://" + cfg.MySQL.DSN}, nil
	case config.DriverSQLite:
		return Target{Dir: "sqlite", DatabaseURL: "sqlite://" + cfg.SQLite.Path}, nil
	case config.DriverMongo:
		u, err := mongoURL(cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return Target{}, err
		}
		return Target{Dir: "mongo", DatabaseURL: u}, nil
	case config.DriverMemory:
		return Target{}, ErrNoMigrations
	default:
		return Target{}, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// mongoURL puts the database name into the URI path, where the migrate
// driver expects it
func mongoURL(uri, database string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid mongo uri: %w", err)
	}
	if strings.Trim(u.Path, "/") == "" {
		u.Path = "/" + database
	}
	return u.String(), nil
}

func open(t Target) (*migrate.Migrate, error) {
	src, err := iofs.New(files, t.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, t.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// Up applies all pending migrations
func Up(t Target) error {
	m, err := open(t)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Str("dir", t.Dir).Msg("database migration: no changes")
			return nil
		}
		return fmt.Errorf("failed to run migrate up: %w", err)
	}

	log.Info().Str("dir", t.Dir).Msg("database migration: success")
	return nil
}

// Down rolls back every applied migration
func Down(t Target) error {
	m, err := open(t)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrate down: %w", err)
	}
	return nil
}

// Version reports the current schema version
func Version(t Target) (uint, bool, error) {
	m, err := open(t)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}
