// Package repotest holds the behavioral tests every session store driver runs
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/domain"
)

// Run exercises repo against the domain.SessionRepository contract. newRepo
// must return an empty store.
func Run(t *testing.T, newRepo func(t *testing.T) domain.SessionRepository) {
	t.Run("FindOrCreateUnknown", func(t *testing.T) {
		repo := newRepo(t)
		s, err := repo.FindOrCreate(context.Background(), "new-session")
		require.NoError(t, err)
		assert.Equal(t, "new-session", s.SessionID)
		assert.Empty(t, s.Messages)
		assert.False(t, s.CreatedAt.IsZero())

		// not persisted until saved
		msgs, err := repo.Messages(context.Background(), "new-session")
		require.NoError(t, err)
		assert.NotNil(t, msgs)
		assert.Empty(t, msgs)
	})

	t.Run("SaveAndReload", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		s, err := repo.FindOrCreate(ctx, "s1")
		require.NoError(t, err)
		s.Append(domain.NewUserMessage("what is btc?"))
		s.Append(domain.NewAssistantMessage(&domain.BotResponse{Answer: "a coin"}, false))
		require.NoError(t, repo.Save(ctx, s))

		msgs, err := repo.Messages(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, domain.RoleUser, msgs[0].Role)
		assert.Equal(t, "what is btc?", msgs[0].Content)
		assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
		assert.Equal(t, "a coin", msgs[1].Content)
		assert.WithinDuration(t, s.Messages[0].Timestamp, msgs[0].Timestamp, time.Millisecond)

		again, err := repo.FindOrCreate(ctx, "s1")
		require.NoError(t, err)
		assert.Len(t, again.Messages, 2)
		assert.WithinDuration(t, s.CreatedAt, again.CreatedAt, time.Millisecond)
	})

	t.Run("SaveRefreshesUpdatedAt", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		s, err := repo.FindOrCreate(ctx, "s2")
		require.NoError(t, err)
		s.UpdatedAt = time.Now().Add(-time.Hour)
		stale := s.UpdatedAt

		require.NoError(t, repo.Save(ctx, s))
		assert.True(t, s.UpdatedAt.After(stale))
	})

	t.Run("AppendPreservesOrder", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i, text := range []string{"one", "two", "three"} {
			s, err := repo.FindOrCreate(ctx, "ordered")
			require.NoError(t, err)
			require.Len(t, s.Messages, i)
			s.Append(domain.NewUserMessage(text))
			require.NoError(t, repo.Save(ctx, s))
		}

		msgs, err := repo.Messages(ctx, "ordered")
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, "one", msgs[0].Content)
		assert.Equal(t, "two", msgs[1].Content)
		assert.Equal(t, "three", msgs[2].Content)
	})

	t.Run("EnrichmentRoundTrip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		resp := &domain.BotResponse{
			Answer:     "chart attached",
			Context:    []string{"ctx"},
			MarketData: domain.MarketData{domain.SymbolETH: {Price: "3120.55", Symbol: domain.SymbolETH, Timestamp: "t"}},
			GraphData: &domain.GraphData{
				Type:  domain.ChartBar,
				Title: "Volume",
				Data:  []map[string]any{{"hour": "01", "volume": 12.0}},
			},
		}
		s, err := repo.FindOrCreate(ctx, "rich")
		require.NoError(t, err)
		s.Append(domain.NewAssistantMessage(resp, true))
		require.NoError(t, repo.Save(ctx, s))

		msgs, err := repo.Messages(ctx, "rich")
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, []string{"ctx"}, msgs[0].Context)
		assert.Equal(t, domain.Price("3120.55"), msgs[0].MarketData[domain.SymbolETH].Price)
		require.NotNil(t, msgs[0].GraphData)
		assert.Equal(t, domain.ChartBar, msgs[0].GraphData.Type)
		require.Len(t, msgs[0].GraphData.Data, 1)
		assert.Equal(t, "01", msgs[0].GraphData.Data[0]["hour"])
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		s, err := repo.FindOrCreate(ctx, "gone")
		require.NoError(t, err)
		s.Append(domain.NewUserMessage("bye"))
		require.NoError(t, repo.Save(ctx, s))

		require.NoError(t, repo.Delete(ctx, "gone"))
		require.NoError(t, repo.Delete(ctx, "gone"))
		require.NoError(t, repo.Delete(ctx, "never-existed"))

		msgs, err := repo.Messages(ctx, "gone")
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("SessionsAreIsolated", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		a, _ := repo.FindOrCreate(ctx, "a")
		a.Append(domain.NewUserMessage("for a"))
		require.NoError(t, repo.Save(ctx, a))

		b, _ := repo.FindOrCreate(ctx, "b")
		b.Append(domain.NewUserMessage("for b"))
		require.NoError(t, repo.Save(ctx, b))

		require.NoError(t, repo.Delete(ctx, "a"))

		msgs, err := repo.Messages(ctx, "b")
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "for b", msgs[0].Content)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, newRepo(t).Ping(context.Background()))
	})
}
