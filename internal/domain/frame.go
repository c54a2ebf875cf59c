package domain

import "encoding/json"

// FrameType names a message on the websocket chat stream
type FrameType string

// Client to server
const (
	FrameChat    FrameType = "chat"
	FrameHistory FrameType = "history"
	FrameClear   FrameType = "clear"
)

// Server to client
const (
	FrameConnected FrameType = "connected"
	FrameResponse  FrameType = "response"
	FrameMessages  FrameType = "messages"
	FrameCleared   FrameType = "cleared"
	FrameStatus    FrameType = "status"
	FrameError     FrameType = "error"
)

// Frame is one JSON message of the websocket chat stream. Message carries the
// user's text on chat frames; Data carries the payload of server frames.
type Frame struct {
	Type      FrameType       `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Message   string          `json:"message,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

// FrameErrorData is the payload of an error frame: the HTTP status the same
// failure maps to on the REST surface, plus the usual error fields.
type FrameErrorData struct {
	Code         int    `json:"code"`
	Error        string `json:"error"`
	Details      any    `json:"details,omitempty"`
	Timeout      bool   `json:"timeout,omitempty"`
	Status       int    `json:"status,omitempty"`
	BackendError bool   `json:"backendError,omitempty"`
}
