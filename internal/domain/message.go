package domain

import (
	"fmt"
	"time"
)

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Valid reports whether r is one of the two known roles
func (r MessageRole) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message represents a single chat message in a session
type Message struct {
	Role      MessageRole `json:"role" bson:"role"`
	Content   string      `json:"content" bson:"content"`
	Timestamp time.Time   `json:"timestamp" bson:"timestamp"`

	// Enrichment, assistant messages only
	Context    []string   `json:"context,omitempty" bson:"context,omitempty"`
	MarketData MarketData `json:"marketData,omitempty" bson:"marketData,omitempty"`
	GraphData  *GraphData `json:"graphData,omitempty" bson:"graphData,omitempty"`
}

// NewUserMessage creates a user message stamped with the server clock
func NewUserMessage(content string) Message {
	return Message{
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewAssistantMessage creates an assistant message from a backend response.
// Enrichment fields are copied only when withEnrichment is set.
func NewAssistantMessage(resp *BotResponse, withEnrichment bool) Message {
	msg := Message{
		Role:      RoleAssistant,
		Content:   resp.Answer,
		Timestamp: time.Now().UTC(),
	}
	if withEnrichment {
		msg.Context = resp.Context
		msg.MarketData = resp.MarketData
		msg.GraphData = resp.GraphData
	}
	return msg
}

// Validate checks the role and content invariants
func (m Message) Validate() error {
	if !m.Role.Valid() {
		return fmt.Errorf("invalid message role %q", m.Role)
	}
	if m.Role == RoleUser && (m.Context != nil || m.MarketData != nil || m.GraphData != nil) {
		return fmt.Errorf("user messages cannot carry enrichment fields")
	}
	return nil
}
