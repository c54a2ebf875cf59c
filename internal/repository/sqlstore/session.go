// Package sqlstore is a database/sql session store for SQLite and MySQL.
// Each session is one row; messages are a JSON array column.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/domain"
)

// SessionRepository implements domain.SessionRepository
type SessionRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewSessionRepository wraps an open database
func NewSessionRepository(db *sql.DB, dialect Dialect) *SessionRepository {
	return &SessionRepository{db: db, dialect: dialect}
}

// OpenSQLite opens a SQLite database file
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
	}

	db, err := sql.Open(SQLite.DriverName, path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}
	return db, nil
}

// OpenMySQL opens a MySQL connection pool from a go-sql-driver DSN
func OpenMySQL(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping mysql: %w", err)
	}
	return db, nil
}

func (r *SessionRepository) FindOrCreate(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	var raw []byte
	var created any
	err := r.db.QueryRowContext(ctx, selectSession, sessionID).Scan(&raw, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewChatSession(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	msgs, err := decodeMessages(raw)
	if err != nil {
		return nil, err
	}
	createdAt, err := decodeTime(created)
	if err != nil {
		return nil, fmt.Errorf("failed to decode created_at: %w", err)
	}

	return &domain.ChatSession{
		SessionID: sessionID,
		Messages:  msgs,
		CreatedAt: createdAt,
	}, nil
}

func (r *SessionRepository) Save(ctx context.Context, session *domain.ChatSession) error {
	session.Touch()

	msgs := session.Messages
	if msgs == nil {
		msgs = []domain.Message{}
	}
	raw, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	_, err = r.db.ExecContext(ctx, r.dialect.Upsert,
		session.SessionID,
		string(raw),
		r.dialect.EncodeTime(session.CreatedAt),
		r.dialect.EncodeTime(session.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Messages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, selectMessages, sessionID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []domain.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return decodeMessages(raw)
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, deleteSession, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func decodeMessages(raw []byte) ([]domain.Message, error) {
	msgs := []domain.Message{}
	if len(raw) == 0 {
		return msgs, nil
	}
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
	}
	return msgs, nil
}

func decodeTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return time.Parse(timeLayout, t)
	case []byte:
		return time.Parse(timeLayout, string(t))
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unsupported time value %T", v)
	}
}
