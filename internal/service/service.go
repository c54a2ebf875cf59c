package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/domain"
)

var (
	// ErrMissingFields: a chat request without message or sessionId
	ErrMissingFields = errors.New("message and sessionId are required")
	// ErrSessionIDRequired: a history request without sessionId
	ErrSessionIDRequired = errors.New("sessionId is required")
	// ErrCacheDisabled: no history cache is configured
	ErrCacheDisabled = errors.New("history cache is disabled")
)

// PersistenceError is a session store failure. When returned from Send the
// backend answer has been discarded.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s session: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Gateway is the trading bot backend
type Gateway interface {
	Ask(ctx context.Context, question string) (*domain.BotResponse, error)
	Health(ctx context.Context) (any, error)
}

// HistoryCache is a read-through cache of session histories
type HistoryCache interface {
	Get(ctx context.Context, sessionID string) ([]domain.Message, bool, error)
	Set(ctx context.Context, sessionID string, msgs []domain.Message) error
	Invalidate(ctx context.Context, sessionID string) error
	FlushAll(ctx context.Context) (int64, error)
}
