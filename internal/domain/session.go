package domain

import (
	"context"
	"fmt"
	"time"
)

// ChatSession is the persisted conversation for one client-generated session ID
type ChatSession struct {
	SessionID string    `json:"sessionId" bson:"sessionId"`
	Messages  []Message `json:"messages" bson:"messages"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// NewChatSession returns an empty, unsaved session
func NewChatSession(sessionID string) *ChatSession {
	now := time.Now().UTC()
	return &ChatSession{
		SessionID: sessionID,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds a message to the end of the session log
func (s *ChatSession) Append(msg Message) {
	s.Messages = append(s.Messages, msg)
}

// Validate checks every message in the log
func (s *ChatSession) Validate() error {
	for i, m := range s.Messages {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
	}
	return nil
}

// Touch refreshes UpdatedAt; stores call it on every save.
func (s *ChatSession) Touch() {
	s.UpdatedAt = time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = s.UpdatedAt
	}
}

// SessionRepository defines the interface for session storage.
//
// Save is a whole-document upsert keyed by SessionID. Concurrent writers to the
// same session are not coordinated: the last save wins.
type SessionRepository interface {
	FindOrCreate(ctx context.Context, sessionID string) (*ChatSession, error)
	Save(ctx context.Context, session *ChatSession) error
	Messages(ctx context.Context, sessionID string) ([]Message, error)
	Delete(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}
