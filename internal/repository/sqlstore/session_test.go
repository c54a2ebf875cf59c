package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/config"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/domain"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/repository/migrations"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/repository/repotest"
)

func newSQLiteRepo(t *testing.T) *SessionRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sessions.db")

	target, err := migrations.TargetFor(config.StoreConfig{Driver: config.DriverSQLite, SQLite: config.SQLiteConfig{Path: path}})
	require.NoError(t, err)
	require.NoError(t, migrations.Up(target))

	db, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSessionRepository(db, SQLite)
}

func TestSQLiteSessionRepository(t *testing.T) {
	repotest.Run(t, func(t *testing.T) domain.SessionRepository {
		return newSQLiteRepo(t)
	})
}

func TestSQLite_CreatedAtIsStable(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	s, err := repo.FindOrCreate(ctx, "stable")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, s))
	created := s.CreatedAt

	time.Sleep(5 * time.Millisecond)
	s, err = repo.FindOrCreate(ctx, "stable")
	require.NoError(t, err)
	s.Append(domain.NewUserMessage("later"))
	require.NoError(t, repo.Save(ctx, s))

	reloaded, err := repo.FindOrCreate(ctx, "stable")
	require.NoError(t, err)
	assert.True(t, reloaded.CreatedAt.Equal(created.UTC()))
}

func TestDecodeTime(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC)

	got, err := decodeTime(now.Format(timeLayout))
	require.NoError(t, err)
	assert.True(t, got.Equal(now))

	got, err = decodeTime([]byte(now.Format(timeLayout)))
	require.NoError(t, err)
	assert.True(t, got.Equal(now))

	got, err = decodeTime(now)
	require.NoError(t, err)
	assert.True(t, got.Equal(now))

	_, err = decodeTime(42)
	assert.Error(t, err)
}
