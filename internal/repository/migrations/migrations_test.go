package migrations

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/config"
)

func TestTargetFor(t *testing.T) {
	tg, err := TargetFor(config.StoreConfig{Driver: config.DriverMySQL, MySQL: config.MySQLConfig{DSN: "u:p@tcp(db:3306)/chat"}})
	require.NoError(t, err)
	assert.Equal(t, "mysql", tg.Dir)
	assert.Equal(t, "mysql://u:p@tcp(db:3306)/chat", tg.DatabaseURL)

	tg, err = TargetFor(config.StoreConfig{Driver: config.DriverMongo, Mongo: config.MongoConfig{URI: "mongodb://localhost:27017", Database: "trading"}})
	require.NoError(t, err)
	assert.Equal(t, "mongodb://localhost:27017/trading", tg.DatabaseURL)

	tg, err = TargetFor(config.StoreConfig{Driver: config.DriverMongo, Mongo: config.MongoConfig{URI: "mongodb://localhost:27017/other", Database: "trading"}})
	require.NoError(t, err)
	assert.Equal(t, "mongodb://localhost:27017/other", tg.DatabaseURL)

	_, err = TargetFor(config.StoreConfig{Driver: config.DriverMemory})
	assert.ErrorIs(t, err, ErrNoMigrations)

	_, err = TargetFor(config.StoreConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestUp_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.db")
	tg, err := TargetFor(config.StoreConfig{Driver: config.DriverSQLite, SQLite: config.SQLiteConfig{Path: path}})
	require.NoError(t, err)

	require.NoError(t, Up(tg))
	// second run is a no-op
	require.NoError(t, Up(tg))

	v, dirty, err := Version(tg)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.False(t, dirty)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var name string
	require.NoError(t, db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='chat_sessions'`).Scan(&name))
	assert.Equal(t, "chat_sessions", name)

	require.NoError(t, Down(tg))
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='chat_sessions'`).Scan(&name)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
