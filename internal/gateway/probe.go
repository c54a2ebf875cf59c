package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
)

const probeMessage = "test message"

// payload field names tried against /query
var probeFields = []string{"query", "message", "question", "text", "q"}

// Probe result statuses
const (
	ProbeSuccess = "success"
	ProbeFailed  = "failed"
)

// ProbeResult is the outcome of one diagnostic request
type ProbeResult struct {
	Test         string   `json:"test"`
	Payload      string   `json:"payload,omitempty"`
	Status       string   `json:"status"`
	StatusCode   int      `json:"statusCode,omitempty"`
	ResponseKeys []string `json:"responseKeys,omitempty"`
	Error        any      `json:"error,omitempty"`
}

// ProbeReport summarizes connectivity diagnostics
type ProbeReport struct {
	BackendURL     string        `json:"backendUrl"`
	Results        []ProbeResult `json:"results"`
	Recommendation string        `json:"recommendation"`
}

// Probe checks that the backend is reachable and which request payload
// shapes /query accepts. Requests run sequentially.
func (c *Client) Probe(ctx context.Context) *ProbeReport {
	report := &ProbeReport{
		BackendURL:     c.cfg.BaseURL,
		Recommendation: "Look for the payload format with status: success",
	}

	report.Results = append(report.Results, c.probeReachable(ctx))

	for i, field := range probeFields {
		report.Results = append(report.Results, c.probePayload(ctx, i+1, map[string]string{field: probeMessage}))
	}

	return report
}

func (c *Client) probeReachable(ctx context.Context) ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.HealthTimeout)
	defer cancel()

	result := ProbeResult{Test: "Backend reachable"}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL, nil)
	if err != nil {
		result.Status = ProbeFailed
		result.Error = err.Error()
		return result
	}

	status, _, err := c.do(req)
	if err != nil {
		result.Status = ProbeFailed
		result.Error = err.Error()
		return result
	}

	result.StatusCode = status
	if status >= 200 && status <= 299 {
		result.Status = ProbeSuccess
	} else {
		result.Status = ProbeFailed
		result.Error = http.StatusText(status)
	}
	return result
}

func (c *Client) probePayload(ctx context.Context, n int, payload map[string]string) ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ProbeTimeout)
	defer cancel()

	encoded, _ := json.Marshal(payload)
	result := ProbeResult{
		Test:    fmt.Sprintf("Payload format %d", n),
		Payload: string(encoded),
	}

	status, body, err := c.post(ctx, "/query", payload)
	if err != nil {
		result.Status = ProbeFailed
		result.Error = err.Error()
		return result
	}

	result.StatusCode = status
	if status < 200 || status > 299 {
		result.Status = ProbeFailed
		result.Error = (&Error{Kind: KindBackend, StatusCode: status, Body: body}).Details()
		return result
	}

	result.Status = ProbeSuccess
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err == nil {
		keys := make([]string, 0, len(doc))
		for k := range doc {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		result.ResponseKeys = keys
	}
	return result
}
