package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/config"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/domain"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/repository/repotest"
)

// Runs against a real server when MONGODB_TEST_URI is set
func TestSessionRepository_Integration(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx := context.Background()
	client, err := Connect(ctx, config.MongoConfig{URI: uri, ConnectTimeout: 5 * time.Second})
	require.NoError(t, err)

	dbName := "tradechat_test_" + uuid.NewString()[:8]
	t.Cleanup(func() {
		_ = client.Database(dbName).Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	repotest.Run(t, func(t *testing.T) domain.SessionRepository {
		_, err := client.Database(dbName).Collection("chatsessions").DeleteMany(ctx, bson.M{})
		require.NoError(t, err)
		return NewSessionRepository(client, dbName, "chatsessions")
	})
}

func TestSessionDocumentShape(t *testing.T) {
	s := domain.NewChatSession("abc")
	s.Append(domain.NewUserMessage("hi"))

	raw, err := bson.Marshal(s)
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, "abc", doc["sessionId"])
	assert.Contains(t, doc, "messages")
	assert.Contains(t, doc, "createdAt")
	assert.Contains(t, doc, "updatedAt")

	var back domain.ChatSession
	require.NoError(t, bson.Unmarshal(raw, &back))
	require.Len(t, back.Messages, 1)
	assert.Equal(t, domain.RoleUser, back.Messages[0].Role)
	assert.Nil(t, back.Messages[0].GraphData)
}
