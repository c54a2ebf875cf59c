// Package memory is a process-local session store for tests and demos
package memory

import (
	"context"
	"sync"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/domain"
)

// SessionRepository implements domain.SessionRepository in memory
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.ChatSession
}

// NewSessionRepository creates an empty store
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]*domain.ChatSession)}
}

func (r *SessionRepository) FindOrCreate(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	r.mu.RLock()
	s, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return domain.NewChatSession(sessionID), nil
	}
	return clone(s), nil
}

func (r *SessionRepository) Save(ctx context.Context, session *domain.ChatSession) error {
	session.Touch()
	r.mu.Lock()
	r.sessions[session.SessionID] = clone(session)
	r.mu.Unlock()
	return nil
}

func (r *SessionRepository) Messages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return []domain.Message{}, nil
	}
	return append([]domain.Message{}, s.Messages...), nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.sessions, sessionID)
	r.mu.Unlock()
	return nil
}

func (r *SessionRepository) Ping(ctx context.Context) error {
	return nil
}

// callers get their own copy so appends never leak into the store unsaved
func clone(s *domain.ChatSession) *domain.ChatSession {
	c := *s
	c.Messages = append([]domain.Message{}, s.Messages...)
	return &c
}
