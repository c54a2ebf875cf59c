package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/domain"
)

var tracer = otel.Tracer("tradechat/gateway")

const (
	defaultTimeout       = 180 * time.Second
	defaultHealthTimeout = 5 * time.Second
	defaultProbeTimeout  = 10 * time.Second

	// upper bound on a response body read into memory
	maxBodySize = 8 << 20
)

// Config configures the trading bot gateway
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	HealthTimeout time.Duration
	ProbeTimeout  time.Duration
}

// Client talks to the external trading bot over HTTP
type Client struct {
	cfg    Config
	client *http.Client
}

// New creates a gateway client. Zero timeouts fall back to the defaults.
func New(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = defaultHealthTimeout
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaultProbeTimeout
	}
	return &Client{
		cfg: cfg,
		// deadlines come from per-call contexts
		client: &http.Client{},
	}
}

type queryRequest struct {
	Question string `json:"question"`
}

// Ask sends one question to the backend. There are no retries. Failures are
// always *Error.
func (c *Client) Ask(ctx context.Context, question string) (*domain.BotResponse, error) {
	ctx, span := tracer.Start(ctx, "trading_bot_query",
		trace.WithAttributes(attribute.Int("question.length", len(question))),
	)
	defer span.End()

	resp, err := c.ask(ctx, question)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, KindOf(err).String())
		return nil, err
	}

	span.SetAttributes(
		attribute.Bool("response.has_graph", resp.GraphData != nil),
		attribute.Int("response.market_symbols", len(resp.MarketData)),
	)
	return resp, nil
}

func (c *Client) ask(ctx context.Context, question string) (*domain.BotResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	status, body, err := c.post(ctx, "/query", queryRequest{Question: question})
	if err != nil {
		return nil, err
	}

	if status < 200 || status > 299 {
		return nil, &Error{Kind: KindBackend, StatusCode: status, Body: body}
	}

	var resp domain.BotResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Kind: KindMalformed, StatusCode: status, Body: body, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if resp.Status == "error" {
		return nil, &Error{Kind: KindBackend, StatusCode: status, Body: body}
	}

	if strings.TrimSpace(resp.Answer) == "" {
		return nil, &Error{Kind: KindMalformed, StatusCode: status, Body: body, Err: errors.New("response has no answer")}
	}

	return &resp, nil
}

// Health fetches the backend health document
func (c *Client) Health(ctx context.Context) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.HealthTimeout)
	defer cancel()

	status, body, err := c.get(ctx, "/health")
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &Error{Kind: KindBackend, StatusCode: status, Body: body}
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		// non-JSON health pages are passed through as text
		return string(body), nil
	}
	return doc, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, &Error{Kind: KindTransport, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, nil, &Error{Kind: KindTransport, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return 0, nil, &Error{Kind: KindTransport, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		gerr := classify(err)
		gerr.StatusCode = resp.StatusCode
		return 0, nil, gerr
	}

	return resp.StatusCode, body, nil
}
