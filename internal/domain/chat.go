package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionID string `json:"sessionId" validate:"required,max=255"`
}

// BotResponse is the response envelope of the external trading bot, passed
// through to the client unchanged.
type BotResponse struct {
	Answer     string     `json:"answer"`
	Context    []string   `json:"context,omitempty"`
	MarketData MarketData `json:"market_data,omitempty"`
	GraphData  *GraphData `json:"graph_data,omitempty"`
	Status     string     `json:"status,omitempty"`
	Timestamp  string     `json:"timestamp,omitempty"`
}

// UnmarshalJSON decodes answer and status strictly. The enrichment fields are
// best effort: a field that does not fit its typed form is dropped, and
// market entries that are not tickers are skipped.
func (r *BotResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Answer     string          `json:"answer"`
		Status     string          `json:"status"`
		Context    json.RawMessage `json:"context"`
		MarketData json.RawMessage `json:"market_data"`
		GraphData  json.RawMessage `json:"graph_data"`
		Timestamp  json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = BotResponse{
		Answer:     raw.Answer,
		Status:     raw.Status,
		Context:    decodeContext(raw.Context),
		MarketData: decodeMarketData(raw.MarketData),
		GraphData:  decodeGraphData(raw.GraphData),
		Timestamp:  decodeText(raw.Timestamp),
	}
	return nil
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// decodeText reads a JSON string or number as text
func decodeText(raw json.RawMessage) string {
	if isAbsent(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// decodeContext keeps string entries as-is and other entries as their JSON text
func decodeContext(raw json.RawMessage) []string {
	if isAbsent(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		if s := decodeText(raw); s != "" {
			return []string{s}
		}
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		out = append(out, string(bytes.TrimSpace(item)))
	}
	return out
}

func decodeMarketData(raw json.RawMessage) MarketData {
	if isAbsent(raw) {
		return nil
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	md := make(MarketData, len(entries))
	for symbol, entry := range entries {
		entry = bytes.TrimSpace(entry)
		if len(entry) == 0 || entry[0] != '{' {
			continue
		}
		var t Ticker
		if err := json.Unmarshal(entry, &t); err != nil {
			continue
		}
		md[symbol] = t
	}
	if len(md) == 0 {
		return nil
	}
	return md
}

// decodeGraphData keeps the records that are JSON objects. A payload whose
// records are all of another shape is dropped.
func decodeGraphData(raw json.RawMessage) *GraphData {
	if isAbsent(raw) {
		return nil
	}
	var g struct {
		Data        []json.RawMessage `json:"data"`
		Type        json.RawMessage   `json:"type"`
		Title       json.RawMessage   `json:"title"`
		Description json.RawMessage   `json:"description"`
		Stats       any               `json:"stats"`
	}
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil
	}

	out := &GraphData{
		Data:        make([]map[string]any, 0, len(g.Data)),
		Type:        ChartType(decodeText(g.Type)),
		Title:       decodeText(g.Title),
		Description: decodeText(g.Description),
		Stats:       g.Stats,
	}
	for _, rec := range g.Data {
		var m map[string]any
		if err := json.Unmarshal(rec, &m); err != nil || m == nil {
			continue
		}
		out.Data = append(out.Data, m)
	}
	if len(out.Data) == 0 && len(g.Data) > 0 {
		return nil
	}
	return out
}

// Well-known market symbols returned by the backend
const (
	SymbolBTC = "BTCUSDT"
	SymbolETH = "ETHUSDT"
)

// MarketData maps a trading symbol to its latest ticker
type MarketData map[string]Ticker

// Ticker is a single price snapshot
type Ticker struct {
	Price     Price  `json:"price" bson:"price"`
	Symbol    string `json:"symbol" bson:"symbol"`
	Timestamp string `json:"timestamp" bson:"timestamp"`
}

// Price keeps the backend's decimal text as-is. The backend sends a string,
// but a bare JSON number is accepted too.
type Price string

// UnmarshalJSON accepts either "123.45" or 123.45
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid price %s: %w", string(data), err)
	}
	*p = Price(n.String())
	return nil
}

// Float parses the price; unparsable prices are reported as 0
func (p Price) Float() float64 {
	f, err := strconv.ParseFloat(string(p), 64)
	if err != nil {
		return 0
	}
	return f
}

// ChartType selects how GraphData is rendered
type ChartType string

const (
	ChartArea   ChartType = "area"
	ChartLine   ChartType = "line"
	ChartCandle ChartType = "candle"
	ChartBar    ChartType = "bar"
	ChartGauge  ChartType = "gauge"
)

// GraphData is a chart payload produced by the backend. Record shape varies by
// query type and is not fixed.
type GraphData struct {
	Data        []map[string]any `json:"data" bson:"data"`
	Type        ChartType        `json:"type" bson:"type"`
	Title       string           `json:"title" bson:"title"`
	Description string           `json:"description" bson:"description"`
	Stats       any              `json:"stats,omitempty" bson:"stats,omitempty"`
}
