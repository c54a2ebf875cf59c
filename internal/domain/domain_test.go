package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatSession_AppendKeepsOrder(t *testing.T) {
	s := NewChatSession("s1")
	s.Append(NewUserMessage("first"))
	s.Append(Message{Role: RoleAssistant, Content: "second"})
	s.Append(NewUserMessage("third"))

	require.Len(t, s.Messages, 3)
	assert.Equal(t, "first", s.Messages[0].Content)
	assert.Equal(t, "second", s.Messages[1].Content)
	assert.Equal(t, "third", s.Messages[2].Content)
}

func TestChatSession_Touch(t *testing.T) {
	s := &ChatSession{SessionID: "s1"}
	s.Touch()
	assert.False(t, s.CreatedAt.IsZero())
	assert.False(t, s.UpdatedAt.IsZero())
}

func TestMessageRole_Valid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAssistant.Valid())
	assert.False(t, MessageRole("system").Valid())
	assert.False(t, MessageRole("").Valid())
}

func TestNewAssistantMessage_Policy(t *testing.T) {
	resp := &BotResponse{
		Answer:     "BTC is up",
		Context:    []string{"source"},
		MarketData: MarketData{SymbolBTC: {Price: "45000.10", Symbol: SymbolBTC}},
		GraphData:  &GraphData{Type: ChartGauge},
	}

	contentOnly := NewAssistantMessage(resp, false)
	assert.Equal(t, RoleAssistant, contentOnly.Role)
	assert.Equal(t, "BTC is up", contentOnly.Content)
	assert.Nil(t, contentOnly.Context)
	assert.Nil(t, contentOnly.MarketData)
	assert.Nil(t, contentOnly.GraphData)

	full := NewAssistantMessage(resp, true)
	assert.Equal(t, []string{"source"}, full.Context)
	assert.Contains(t, full.MarketData, SymbolBTC)
	assert.NotNil(t, full.GraphData)
}

func TestMessage_Validate(t *testing.T) {
	assert.NoError(t, NewUserMessage("hi").Validate())
	assert.Error(t, Message{Role: "bot", Content: "x"}.Validate())
	assert.Error(t, Message{Role: RoleUser, Content: "x", Context: []string{"c"}}.Validate())
}

func TestPrice_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Price
		float float64
	}{
		{"string", `"45000.12"`, "45000.12", 45000.12},
		{"number", `3120.5`, "3120.5", 3120.5},
		{"null", `null`, "", 0},
		{"garbage string", `"n/a"`, "n/a", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Price
			require.NoError(t, json.Unmarshal([]byte(tt.input), &p))
			assert.Equal(t, tt.want, p)
			assert.InDelta(t, tt.float, p.Float(), 1e-9)
		})
	}
}

func TestBotResponse_Decode(t *testing.T) {
	body := `{
		"answer": "ok",
		"context": ["a", "b"],
		"market_data": {"BTCUSDT": {"price": "45000", "symbol": "BTCUSDT", "timestamp": "2024-01-01T00:00:00Z"}},
		"graph_data": {"type": "bar", "title": "Volume", "description": "d", "data": [{"hour": "01", "volume": 12}]},
		"status": "success"
	}`

	var resp BotResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, "ok", resp.Answer)
	assert.Equal(t, []string{"a", "b"}, resp.Context)
	assert.Equal(t, Price("45000"), resp.MarketData[SymbolBTC].Price)
	require.NotNil(t, resp.GraphData)
	assert.Equal(t, ChartBar, resp.GraphData.Type)
	assert.Len(t, resp.GraphData.Data, 1)
}

func TestBotResponse_DecodeDropsOddEnrichment(t *testing.T) {
	body := `{
		"answer": "ok",
		"status": "success",
		"context": "single note",
		"market_data": {"ETHUSDT": {"price": 3100.5}, "source": "binance", "count": 2, "none": null},
		"graph_data": {"type": "bar", "title": 7, "data": [{"label": "a", "value": 1}, "junk", 3]},
		"timestamp": {"unix": 1}
	}`

	var resp BotResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, "ok", resp.Answer)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, []string{"single note"}, resp.Context)
	assert.Equal(t, MarketData{SymbolETH: {Price: "3100.5"}}, resp.MarketData)
	require.NotNil(t, resp.GraphData)
	assert.Equal(t, "7", resp.GraphData.Title)
	assert.Equal(t, []map[string]any{{"label": "a", "value": 1.0}}, resp.GraphData.Data)
	assert.Empty(t, resp.Timestamp)

	assert.Error(t, json.Unmarshal([]byte(`{"answer":["x"]}`), &resp))
	assert.Error(t, json.Unmarshal([]byte(`{"answer":"ok","status":false}`), &resp))
}
