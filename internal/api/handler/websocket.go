package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/api/response"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/domain"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/service"
)

const (
	pongWait           = 60 * time.Second
	pingInterval       = 54 * time.Second
	writeWait          = 10 * time.Second
	statusPollInterval = time.Second
	maxFrameSize       = 64 << 10
)

// WebSocketHandler serves the chat stream on /ws. A connection is bound to
// one session; chat turns on it run one at a time.
type WebSocketHandler struct {
	chatService    *service.ChatService
	historyService *service.HistoryService
	monitor        *service.HealthMonitor
	upgrader       websocket.Upgrader
}

// NewWebSocketHandler creates a websocket handler accepting the given
// origins. "*" accepts any origin.
func NewWebSocketHandler(
	chatService *service.ChatService,
	historyService *service.HistoryService,
	monitor *service.HealthMonitor,
	allowedOrigins []string,
) *WebSocketHandler {
	return &WebSocketHandler{
		chatService:    chatService,
		historyService: historyService,
		monitor:        monitor,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// non-browser clients send no origin
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// wsConn serializes writes; gorilla allows one concurrent writer
type wsConn struct {
	conn      *websocket.Conn
	sessionID string
	mu        sync.Mutex
}

func (c *wsConn) send(t domain.FrameType, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	frame := domain.Frame{
		Type:      t,
		SessionID: c.sessionID,
		Data:      raw,
		Timestamp: time.Now().UnixMilli(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(frame)
}

func (c *wsConn) sendError(code int, body response.ErrorBody) error {
	return c.send(domain.FrameError, domain.FrameErrorData{
		Code:         code,
		Error:        body.Error,
		Details:      body.Details,
		Timeout:      body.Timeout,
		Status:       body.Status,
		BackendError: body.BackendError,
	})
}

// Stream handles GET /ws?sessionId=
func (h *WebSocketHandler) Stream(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("sessionId"))
	if sessionID == "" {
		response.BadRequest(w, msgSessionRequired)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied
		log.Warn().Err(err).Str("session_id", sessionID).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	c := &wsConn{conn: conn, sessionID: sessionID}

	// the stream outlives any per-request deadline
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	conn.SetReadLimit(maxFrameSize)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	log.Info().Str("session_id", sessionID).Msg("websocket connected")

	status := h.monitor.Status()
	if err := c.send(domain.FrameConnected, map[string]any{"backend": status}); err != nil {
		return
	}

	go h.pingLoop(ctx, c)
	go h.statusLoop(ctx, c, status.Status)

	for {
		// a chat turn may outlast pongWait, so the deadline is renewed per read
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var in domain.Frame
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("session_id", sessionID).Msg("websocket read failed")
			}
			log.Info().Str("session_id", sessionID).Msg("websocket closed")
			return
		}

		if err := h.handleFrame(ctx, c, in); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("websocket write failed")
			return
		}
	}
}

func (h *WebSocketHandler) handleFrame(ctx context.Context, c *wsConn, in domain.Frame) error {
	if in.SessionID != "" && in.SessionID != c.sessionID {
		return c.sendError(http.StatusBadRequest, response.ErrorBody{Error: "session mismatch"})
	}

	switch in.Type {
	case domain.FrameChat:
		resp, err := h.chatService.Send(ctx, c.sessionID, in.Message)
		if err != nil {
			return c.sendError(chatError(c.sessionID, err))
		}
		return c.send(domain.FrameResponse, resp)

	case domain.FrameHistory:
		msgs, err := h.historyService.List(ctx, c.sessionID)
		if err != nil {
			log.Error().Err(err).Str("session_id", c.sessionID).Msg("history fetch failed")
			return c.sendError(http.StatusInternalServerError, response.ErrorBody{Error: msgHistoryFailed, Details: err.Error()})
		}
		return c.send(domain.FrameMessages, map[string]any{"messages": msgs})

	case domain.FrameClear:
		if err := h.historyService.Clear(ctx, c.sessionID); err != nil {
			log.Error().Err(err).Str("session_id", c.sessionID).Msg("history clear failed")
			return c.sendError(http.StatusInternalServerError, response.ErrorBody{Error: msgClearFailed, Details: err.Error()})
		}
		return c.send(domain.FrameCleared, map[string]any{"message": msgHistoryCleared})

	default:
		return c.sendError(http.StatusBadRequest, response.ErrorBody{Error: "unknown frame type: " + string(in.Type)})
	}
}

func (h *WebSocketHandler) pingLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// statusLoop pushes a status frame whenever the monitored backend status changes
func (h *WebSocketHandler) statusLoop(ctx context.Context, c *wsConn, last service.BackendStatus) {
	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := h.monitor.Status()
			if snap.Status == last {
				continue
			}
			last = snap.Status
			if err := c.send(domain.FrameStatus, snap); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					log.Debug().Err(err).Str("session_id", c.sessionID).Msg("status push failed")
				}
				return
			}
		}
	}
}
