package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/config"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/domain"
)

// Connect creates a client and verifies the server is reachable
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		// nested documents decode to maps so chart payloads encode back to JSON objects
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	if cfg.ConnectTimeout > 0 {
		clientOpts.SetConnectTimeout(cfg.ConnectTimeout)
		clientOpts.SetServerSelectionTimeout(cfg.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	return client, nil
}

// SessionRepository stores one document per session
type SessionRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewSessionRepository creates a repository on database.collection
func NewSessionRepository(client *mongo.Client, database, collection string) *SessionRepository {
	return &SessionRepository{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
}

func (r *SessionRepository) FindOrCreate(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	var s domain.ChatSession
	err := r.coll.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.NewChatSession(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if s.Messages == nil {
		s.Messages = []domain.Message{}
	}
	return &s, nil
}

func (r *SessionRepository) Save(ctx context.Context, session *domain.ChatSession) error {
	session.Touch()
	if session.Messages == nil {
		session.Messages = []domain.Message{}
	}

	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"sessionId": session.SessionID},
		session,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Messages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	var s domain.ChatSession
	err := r.coll.FindOne(ctx,
		bson.M{"sessionId": sessionID},
		options.FindOne().SetProjection(bson.M{"messages": 1}),
	).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []domain.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if s.Messages == nil {
		return []domain.Message{}, nil
	}
	return s.Messages, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"sessionId": sessionID}); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}
