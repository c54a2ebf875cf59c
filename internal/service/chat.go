package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/domain"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/gateway"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/telemetry"
)

// ChatOptions tunes ChatService
type ChatOptions struct {
	// PersistEnrichment stores context, market data and chart data with
	// assistant messages. Off by default: only the answer text is kept.
	PersistEnrichment bool
}

// ChatService runs one chat turn: load session, ask the backend, persist
type ChatService struct {
	sessions domain.SessionRepository
	gateway  Gateway
	cache    HistoryCache
	metrics  *telemetry.Metrics
	opts     ChatOptions
}

// NewChatService creates a new chat service. cache and metrics may be nil.
func NewChatService(
	sessions domain.SessionRepository,
	gw Gateway,
	cache HistoryCache,
	metrics *telemetry.Metrics,
	opts ChatOptions,
) *ChatService {
	return &ChatService{
		sessions: sessions,
		gateway:  gw,
		cache:    cache,
		metrics:  metrics,
		opts:     opts,
	}
}

// Send records the user message, forwards it to the backend and stores the
// answer. Nothing is written unless the whole turn succeeds. The returned
// response is the backend envelope, enrichment included.
func (s *ChatService) Send(ctx context.Context, sessionID, message string) (*domain.BotResponse, error) {
	if strings.TrimSpace(message) == "" || strings.TrimSpace(sessionID) == "" {
		return nil, ErrMissingFields
	}

	session, err := s.sessions.FindOrCreate(ctx, sessionID)
	if err != nil {
		s.metrics.RecordTurn(ctx, telemetry.OutcomePersistFailed, 0)
		return nil, &PersistenceError{Op: "load", Err: err}
	}

	session.Append(domain.NewUserMessage(message))

	log.Debug().
		Str("session_id", sessionID).
		Int("history_len", len(session.Messages)).
		Msg("sending question to trading bot")

	start := time.Now()
	resp, err := s.gateway.Ask(ctx, message)
	latency := time.Since(start)
	if err != nil {
		s.metrics.RecordTurn(ctx, outcomeFor(err), latency)
		log.Error().
			Err(err).
			Str("session_id", sessionID).
			Str("kind", gateway.KindOf(err).String()).
			Dur("latency", latency).
			Msg("trading bot request failed")
		return nil, err
	}

	session.Append(domain.NewAssistantMessage(resp, s.opts.PersistEnrichment))

	if err := session.Validate(); err != nil {
		s.metrics.RecordTurn(ctx, telemetry.OutcomePersistFailed, latency)
		log.Error().Err(err).Str("session_id", sessionID).Msg("refusing to save invalid chat session")
		return nil, &PersistenceError{Op: "validate", Err: err}
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		s.metrics.RecordTurn(ctx, telemetry.OutcomePersistFailed, latency)
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to save chat session")
		return nil, &PersistenceError{Op: "save", Err: err}
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, sessionID); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to invalidate history cache")
		}
	}

	s.metrics.RecordTurn(ctx, telemetry.OutcomeSuccess, latency)
	log.Info().
		Str("session_id", sessionID).
		Dur("latency", latency).
		Bool("has_graph", resp.GraphData != nil).
		Int("market_symbols", len(resp.MarketData)).
		Msg("chat turn completed")

	return resp, nil
}

func outcomeFor(err error) string {
	switch gateway.KindOf(err) {
	case gateway.KindTimeout:
		return telemetry.OutcomeTimeout
	case gateway.KindBackend:
		return telemetry.OutcomeBackendError
	case gateway.KindMalformed:
		return telemetry.OutcomeMalformed
	default:
		return telemetry.OutcomeTransport
	}
}
