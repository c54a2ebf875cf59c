package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/domain"
)

// HistoryService reads and clears session histories
type HistoryService struct {
	sessions domain.SessionRepository
	cache    HistoryCache
}

// NewHistoryService creates a new history service. cache may be nil.
func NewHistoryService(sessions domain.SessionRepository, cache HistoryCache) *HistoryService {
	return &HistoryService{sessions: sessions, cache: cache}
}

// List returns every message of the session in order, or an empty slice
func (s *HistoryService) List(ctx context.Context, sessionID string) ([]domain.Message, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrSessionIDRequired
	}

	if s.cache != nil {
		msgs, ok, err := s.cache.Get(ctx, sessionID)
		if err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("history cache read failed")
		} else if ok {
			return msgs, nil
		}
	}

	msgs, err := s.sessions.Messages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chat history: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, sessionID, msgs); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("history cache write failed")
		}
	}

	return msgs, nil
}

// Clear removes the session. Clearing an unknown session succeeds.
func (s *HistoryService) Clear(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrSessionIDRequired
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear chat history: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, sessionID); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to invalidate history cache")
		}
	}

	log.Info().Str("session_id", sessionID).Msg("chat history cleared")
	return nil
}

// FlushCache drops every cached history
func (s *HistoryService) FlushCache(ctx context.Context) (int64, error) {
	if s.cache == nil {
		return 0, ErrCacheDisabled
	}
	return s.cache.FlushAll(ctx)
}

// Ready checks the session store
func (s *HistoryService) Ready(ctx context.Context) error {
	return s.sessions.Ping(ctx)
}
