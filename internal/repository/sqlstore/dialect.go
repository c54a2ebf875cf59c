package sqlstore

import "time"

// Dialect holds the statements that differ between SQL engines
type Dialect struct {
	Name       string
	DriverName string
	Upsert     string
	// EncodeTime converts a timestamp into the column representation
	EncodeTime func(t time.Time) any
}

const (
	selectSession  = `SELECT messages, created_at FROM chat_sessions WHERE session_id = ?`
	selectMessages = `SELECT messages FROM chat_sessions WHERE session_id = ?`
	deleteSession  = `DELETE FROM chat_sessions WHERE session_id = ?`

	timeLayout = time.RFC3339Nano
)

// SQLite stores timestamps as RFC 3339 text
var SQLite = Dialect{
	Name:       "sqlite",
	DriverName: "sqlite",
	Upsert: `
		INSERT INTO chat_sessions (session_id, messages, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			messages = excluded.messages,
			updated_at = excluded.updated_at
	`,
	EncodeTime: func(t time.Time) any { return t.UTC().Format(timeLayout) },
}

// MySQL stores timestamps in DATETIME(6) columns
var MySQL = Dialect{
	Name:       "mysql",
	DriverName: "mysql",
	Upsert: `
		INSERT INTO chat_sessions (session_id, messages, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			messages = VALUES(messages),
			updated_at = VALUES(updated_at)
	`,
	EncodeTime: func(t time.Time) any { return t.UTC() },
}
