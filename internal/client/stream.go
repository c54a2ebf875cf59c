package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/domain"
)

// ErrStreamClosed is returned by calls on a closed stream
var ErrStreamClosed = errors.New("stream closed")

// Stream is a websocket chat connection bound to one session. Calls are
// serialized; backend status pushes are tracked in the background.
type Stream struct {
	conn      *websocket.Conn
	sessionID string

	callMu  sync.Mutex
	writeMu sync.Mutex
	replies chan domain.Frame
	done    chan struct{}
	closing chan struct{}
	once    sync.Once

	mu      sync.RWMutex
	status  string
	readErr error
}

type statusData struct {
	Status string `json:"status"`
}

// Dial opens the chat stream for sessionID
func (c *Client) Dial(ctx context.Context, sessionID string) (*Stream, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/ws"
	u.RawQuery = url.Values{"sessionId": {sessionID}}.Encode()

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake failed (%d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}

	s := &Stream{
		conn:      conn,
		sessionID: sessionID,
		replies:   make(chan domain.Frame, 1),
		done:      make(chan struct{}),
		closing:   make(chan struct{}),
		status:    "checking",
	}

	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	var first domain.Frame
	if err := conn.ReadJSON(&first); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to read connected frame: %w", err)
	}
	_ = conn.SetReadDeadline(time.Time{})
	if first.Type != domain.FrameConnected {
		conn.Close()
		return nil, fmt.Errorf("unexpected first frame %q", first.Type)
	}
	var connected struct {
		Backend statusData `json:"backend"`
	}
	if err := json.Unmarshal(first.Data, &connected); err == nil && connected.Backend.Status != "" {
		s.status = connected.Backend.Status
	}

	go s.readLoop()
	return s, nil
}

// SessionID is the session the stream is bound to
func (s *Stream) SessionID() string {
	return s.sessionID
}

// Status is the last backend status pushed by the server
func (s *Stream) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Stream) readLoop() {
	defer close(s.done)
	for {
		var f domain.Frame
		if err := s.conn.ReadJSON(&f); err != nil {
			s.mu.Lock()
			s.readErr = err
			s.mu.Unlock()
			return
		}

		if f.Type == domain.FrameStatus {
			var st statusData
			if err := json.Unmarshal(f.Data, &st); err == nil && st.Status != "" {
				s.mu.Lock()
				s.status = st.Status
				s.mu.Unlock()
			}
			continue
		}

		select {
		case s.replies <- f:
		case <-s.closing:
			return
		}
	}
}

// Chat sends one message and waits for the answer
func (s *Stream) Chat(ctx context.Context, message string) (*domain.BotResponse, error) {
	var resp domain.BotResponse
	if err := s.call(ctx, domain.Frame{Type: domain.FrameChat, Message: message}, domain.FrameResponse, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History returns the stored messages of the session
func (s *Stream) History(ctx context.Context) ([]domain.Message, error) {
	var out struct {
		Messages []domain.Message `json:"messages"`
	}
	if err := s.call(ctx, domain.Frame{Type: domain.FrameHistory}, domain.FrameMessages, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// Clear deletes the session history
func (s *Stream) Clear(ctx context.Context) error {
	return s.call(ctx, domain.Frame{Type: domain.FrameClear}, domain.FrameCleared, nil)
}

func (s *Stream) call(ctx context.Context, out domain.Frame, want domain.FrameType, v any) error {
	s.callMu.Lock()
	defer s.callMu.Unlock()

	// drop a reply left behind by a cancelled call
	select {
	case <-s.replies:
	default:
	}

	out.SessionID = s.sessionID
	s.writeMu.Lock()
	err := s.conn.WriteJSON(out)
	s.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to send frame: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		s.mu.RLock()
		defer s.mu.RUnlock()
		if s.readErr != nil {
			return fmt.Errorf("%w: %v", ErrStreamClosed, s.readErr)
		}
		return ErrStreamClosed
	case f := <-s.replies:
		return decodeFrame(f, want, v)
	}
}

func decodeFrame(f domain.Frame, want domain.FrameType, v any) error {
	if f.Type == domain.FrameError {
		var d domain.FrameErrorData
		if err := json.Unmarshal(f.Data, &d); err != nil {
			return fmt.Errorf("invalid error frame: %w", err)
		}
		return &APIError{
			StatusCode:   d.Code,
			Message:      d.Error,
			Details:      d.Details,
			Timeout:      d.Timeout,
			BackendError: d.BackendError,
		}
	}
	if f.Type != want {
		return fmt.Errorf("unexpected frame %q, want %q", f.Type, want)
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(f.Data, v); err != nil {
		return fmt.Errorf("failed to decode %s frame: %w", f.Type, err)
	}
	return nil
}

// Close sends a close message and releases the connection
func (s *Stream) Close() error {
	s.once.Do(func() { close(s.closing) })

	s.writeMu.Lock()
	_ = s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	s.writeMu.Unlock()
	return s.conn.Close()
}
