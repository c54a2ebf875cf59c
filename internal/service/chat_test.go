package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/domain"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/gateway"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/repository/memory"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/telemetry"
)

func enrichedResponse() *domain.BotResponse {
	return &domain.BotResponse{
		Answer:     "BTC trades at 45,000",
		Context:    []string{"binance ticker"},
		MarketData: domain.MarketData{domain.SymbolBTC: {Price: "45000.00", Symbol: domain.SymbolBTC, Timestamp: "2024-01-01T00:00:00Z"}},
		GraphData:  &domain.GraphData{Type: domain.ChartGauge, Data: []map[string]any{{"value": 72.0}}},
		Status:     "success",
	}
}

func TestChatService_Send_MissingFields(t *testing.T) {
	repo := new(MockSessionRepository)
	gw := new(MockGateway)
	svc := NewChatService(repo, gw, nil, telemetry.NopMetrics(), ChatOptions{})

	tests := []struct {
		name, sessionID, message string
	}{
		{"no message", "s1", ""},
		{"blank message", "s1", "   "},
		{"no session", "", "hi"},
		{"both missing", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Send(context.Background(), tt.sessionID, tt.message)
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, ErrMissingFields)
		})
	}

	repo.AssertNotCalled(t, "FindOrCreate", mock.Anything, mock.Anything)
	gw.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
}

func TestChatService_Send_NewSessionContentOnly(t *testing.T) {
	repo := new(MockSessionRepository)
	gw := new(MockGateway)
	cache := new(MockHistoryCache)
	svc := NewChatService(repo, gw, cache, telemetry.NopMetrics(), ChatOptions{})

	ctx := context.Background()
	var saved *domain.ChatSession

	repo.On("FindOrCreate", ctx, "s1").Return(domain.NewChatSession("s1"), nil)
	gw.On("Ask", ctx, "price of btc?").Return(enrichedResponse(), nil)
	repo.On("Save", ctx, mock.AnythingOfType("*domain.ChatSession")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.ChatSession) }).
		Return(nil)
	cache.On("Invalidate", ctx, "s1").Return(nil)

	resp, err := svc.Send(ctx, "s1", "price of btc?")
	require.NoError(t, err)

	// the caller always gets the full envelope
	assert.Equal(t, "BTC trades at 45,000", resp.Answer)
	assert.NotNil(t, resp.GraphData)
	assert.Contains(t, resp.MarketData, domain.SymbolBTC)

	require.NotNil(t, saved)
	require.Len(t, saved.Messages, 2)
	assert.Equal(t, domain.RoleUser, saved.Messages[0].Role)
	assert.Equal(t, "price of btc?", saved.Messages[0].Content)
	assert.Equal(t, domain.RoleAssistant, saved.Messages[1].Role)
	assert.Equal(t, "BTC trades at 45,000", saved.Messages[1].Content)
	assert.Nil(t, saved.Messages[1].Context)
	assert.Nil(t, saved.Messages[1].MarketData)
	assert.Nil(t, saved.Messages[1].GraphData)
	assert.False(t, saved.Messages[0].Timestamp.After(saved.Messages[1].Timestamp))

	repo.AssertExpectations(t)
	gw.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestChatService_Send_PersistEnrichment(t *testing.T) {
	repo := memory.NewSessionRepository()
	gw := new(MockGateway)
	svc := NewChatService(repo, gw, nil, nil, ChatOptions{PersistEnrichment: true})

	ctx := context.Background()
	gw.On("Ask", ctx, "q").Return(enrichedResponse(), nil)

	_, err := svc.Send(ctx, "s1", "q")
	require.NoError(t, err)

	msgs, err := repo.Messages(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Nil(t, msgs[0].GraphData, "user messages never carry enrichment")
	assert.Equal(t, []string{"binance ticker"}, msgs[1].Context)
	assert.Contains(t, msgs[1].MarketData, domain.SymbolBTC)
	assert.NotNil(t, msgs[1].GraphData)
}

func TestChatService_Send_AppendsToExistingSession(t *testing.T) {
	repo := memory.NewSessionRepository()
	gw := new(MockGateway)
	svc := NewChatService(repo, gw, nil, telemetry.NopMetrics(), ChatOptions{})

	ctx := context.Background()
	gw.On("Ask", ctx, mock.Anything).Return(&domain.BotResponse{Answer: "ok"}, nil)

	for _, q := range []string{"first", "second", "third"} {
		_, err := svc.Send(ctx, "s1", q)
		require.NoError(t, err)
	}

	msgs, err := repo.Messages(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 6)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "second", msgs[2].Content)
	assert.Equal(t, "third", msgs[4].Content)
	for i, m := range msgs {
		if i%2 == 0 {
			assert.Equal(t, domain.RoleUser, m.Role)
		} else {
			assert.Equal(t, domain.RoleAssistant, m.Role)
		}
	}
}

func TestChatService_Send_GatewayFailureNothingPersisted(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"timeout", &gateway.Error{Kind: gateway.KindTimeout, Err: context.DeadlineExceeded}},
		{"backend", &gateway.Error{Kind: gateway.KindBackend, StatusCode: 500, Body: []byte(`{"detail":"x"}`)}},
		{"transport", &gateway.Error{Kind: gateway.KindTransport, Err: errors.New("connection refused")}},
		{"malformed", &gateway.Error{Kind: gateway.KindMalformed, StatusCode: 200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockSessionRepository)
			gw := new(MockGateway)
			svc := NewChatService(repo, gw, nil, telemetry.NopMetrics(), ChatOptions{})

			ctx := context.Background()
			repo.On("FindOrCreate", ctx, "s1").Return(domain.NewChatSession("s1"), nil)
			gw.On("Ask", ctx, "q").Return(nil, tt.err)

			resp, err := svc.Send(ctx, "s1", "q")
			assert.Nil(t, resp)
			assert.Equal(t, tt.err, err)
			repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestChatService_Send_TimeoutLeavesHistoryUnchanged(t *testing.T) {
	repo := memory.NewSessionRepository()
	gw := new(MockGateway)
	svc := NewChatService(repo, gw, nil, telemetry.NopMetrics(), ChatOptions{})

	ctx := context.Background()
	gw.On("Ask", ctx, "ok").Return(&domain.BotResponse{Answer: "fine"}, nil).Once()
	gw.On("Ask", ctx, "slow").Return(nil, &gateway.Error{Kind: gateway.KindTimeout}).Once()

	_, err := svc.Send(ctx, "s1", "ok")
	require.NoError(t, err)

	_, err = svc.Send(ctx, "s1", "slow")
	assert.True(t, gateway.IsTimeout(err))

	msgs, err := repo.Messages(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func TestChatService_Send_SaveFailure(t *testing.T) {
	repo := new(MockSessionRepository)
	gw := new(MockGateway)
	cache := new(MockHistoryCache)
	svc := NewChatService(repo, gw, cache, telemetry.NopMetrics(), ChatOptions{})

	ctx := context.Background()
	storeErr := errors.New("write conflict")
	repo.On("FindOrCreate", ctx, "s1").Return(domain.NewChatSession("s1"), nil)
	gw.On("Ask", ctx, "q").Return(enrichedResponse(), nil)
	repo.On("Save", ctx, mock.Anything).Return(storeErr)

	resp, err := svc.Send(ctx, "s1", "q")
	assert.Nil(t, resp, "answer is dropped when the turn cannot be stored")

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "save", perr.Op)
	assert.ErrorIs(t, err, storeErr)
	cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestChatService_Send_InvalidStoredRole(t *testing.T) {
	repo := new(MockSessionRepository)
	gw := new(MockGateway)
	svc := NewChatService(repo, gw, nil, telemetry.NopMetrics(), ChatOptions{})

	ctx := context.Background()
	stored := domain.NewChatSession("s1")
	stored.Append(domain.Message{Role: "system", Content: "legacy"})
	repo.On("FindOrCreate", ctx, "s1").Return(stored, nil)
	gw.On("Ask", ctx, "q").Return(enrichedResponse(), nil)

	resp, err := svc.Send(ctx, "s1", "q")
	assert.Nil(t, resp)

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "validate", perr.Op)
	assert.Contains(t, err.Error(), "message 0")
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestChatService_Send_LoadFailure(t *testing.T) {
	repo := new(MockSessionRepository)
	gw := new(MockGateway)
	svc := NewChatService(repo, gw, nil, telemetry.NopMetrics(), ChatOptions{})

	ctx := context.Background()
	repo.On("FindOrCreate", ctx, "s1").Return(nil, errors.New("db down"))

	_, err := svc.Send(ctx, "s1", "q")
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "load", perr.Op)
	gw.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
}

func TestChatService_Send_CacheInvalidateFailureIgnored(t *testing.T) {
	repo := memory.NewSessionRepository()
	gw := new(MockGateway)
	cache := new(MockHistoryCache)
	svc := NewChatService(repo, gw, cache, telemetry.NopMetrics(), ChatOptions{})

	ctx := context.Background()
	gw.On("Ask", ctx, "q").Return(&domain.BotResponse{Answer: "a"}, nil)
	cache.On("Invalidate", ctx, "s1").Return(errors.New("redis down"))

	resp, err := svc.Send(ctx, "s1", "q")
	require.NoError(t, err)
	assert.Equal(t, "a", resp.Answer)
}
