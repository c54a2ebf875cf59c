// Package client is an HTTP client for the chat service API
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/domain"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/gateway"
)

// APIError is a non-success reply from the chat service
type APIError struct {
	StatusCode   int
	Message      string
	Details      any
	Timeout      bool
	BackendError bool
}

func (e *APIError) Error() string {
	if e.Details != nil {
		if s, ok := e.Details.(string); ok {
			return fmt.Sprintf("%s (%d): %s", e.Message, e.StatusCode, s)
		}
		d, _ := json.Marshal(e.Details)
		return fmt.Sprintf("%s (%d): %s", e.Message, e.StatusCode, d)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.StatusCode)
}

// HealthReport is the reply of GET /health
type HealthReport struct {
	Status    string `json:"status"`
	Backend   any    `json:"backend,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Healthy reports whether the trading bot answered
func (h *HealthReport) Healthy() bool {
	return h.Status == "healthy"
}

// Client calls the chat service
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for the service at baseURL. Chat turns may take
// minutes, so timeout should exceed the server's gateway timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// WithToken returns a copy that sends an operator bearer token
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Chat sends one message and returns the bot response
func (c *Client) Chat(ctx context.Context, sessionID, message string) (*domain.BotResponse, error) {
	var out struct {
		Response *domain.BotResponse `json:"response"`
	}
	body := domain.ChatRequest{Message: message, SessionID: sessionID}
	if err := c.do(ctx, http.MethodPost, "/api/chat", body, &out); err != nil {
		return nil, err
	}
	if out.Response == nil {
		return nil, fmt.Errorf("chat reply has no response")
	}
	return out.Response, nil
}

// History returns the stored messages of a session
func (c *Client) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	var out struct {
		Messages []domain.Message `json:"messages"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/history?sessionId="+url.QueryEscape(sessionID), nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// Clear deletes the session history
func (c *Client) Clear(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/api/history?sessionId="+url.QueryEscape(sessionID), nil, nil)
}

// Health runs a live backend check through the service. An unhealthy
// backend is reported in the result, not as an error.
func (c *Client) Health(ctx context.Context) (*HealthReport, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()

	var report HealthReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("invalid health reply (%d): %w", resp.StatusCode, err)
	}
	return &report, nil
}

// Debug runs the operator backend probe
func (c *Client) Debug(ctx context.Context) (*gateway.ProbeReport, error) {
	var report gateway.ProbeReport
	if err := c.do(ctx, http.MethodGet, "/api/debug", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// FlushCache drops all cached histories and returns the number of keys removed
func (c *Client) FlushCache(ctx context.Context) (int64, error) {
	var out struct {
		KeysDeleted int64 `json:"keys_deleted"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/cache/flush", nil, &out); err != nil {
		return 0, err
	}
	return out.KeysDeleted, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	var body struct {
		Error        string `json:"error"`
		Details      any    `json:"details"`
		Timeout      bool   `json:"timeout"`
		BackendError bool   `json:"backendError"`
	}
	apiErr := &APIError{StatusCode: status, Message: http.StatusText(status)}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
		apiErr.Timeout = body.Timeout
		apiErr.BackendError = body.BackendError
	}
	return apiErr
}
