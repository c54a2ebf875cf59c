package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/api/response"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/domain"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/gateway"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/service"
)

var validate = validator.New()

const (
	msgMissingFields = "Message and sessionId are required"
	msgChatFailed    = "Failed to process chat message"
	msgTimeout       = "Request timeout"

	timeoutDetails = "The backend is taking longer than expected to process your request. This usually happens when:\n" +
		"1. Fetching real-time market data\n" +
		"2. Analyzing large amounts of news data\n" +
		"3. Processing complex queries\n\n" +
		"Please try again, or check if your backend is running properly."
)

// ChatHandler handles chat turns
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Send handles POST /chat
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, msgMissingFields)
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, msgMissingFields)
		return
	}

	resp, err := h.chatService.Send(r.Context(), req.SessionID, req.Message)
	if err != nil {
		writeChatError(w, req.SessionID, err)
		return
	}

	response.OK(w, map[string]any{"response": resp})
}

func writeChatError(w http.ResponseWriter, sessionID string, err error) {
	status, body := chatError(sessionID, err)
	response.Fail(w, status, body)
}

// chatError maps a failed chat turn to its HTTP status and error payload
func chatError(sessionID string, err error) (int, response.ErrorBody) {
	if errors.Is(err, service.ErrMissingFields) {
		return http.StatusBadRequest, response.ErrorBody{Error: msgMissingFields}
	}

	if gateway.IsTimeout(err) {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("trading bot timed out")
		return http.StatusGatewayTimeout, response.ErrorBody{
			Error:   msgTimeout,
			Details: timeoutDetails,
			Timeout: true,
		}
	}

	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		log.Error().Err(err).Str("session_id", sessionID).Str("kind", gwErr.Kind.String()).Msg("chat turn failed")
		return http.StatusInternalServerError, response.ErrorBody{
			Error:        msgChatFailed,
			Details:      gwErr.Details(),
			Status:       gwErr.StatusCode,
			BackendError: gwErr.Kind == gateway.KindBackend || gwErr.Kind == gateway.KindMalformed,
		}
	}

	log.Error().Err(err).Str("session_id", sessionID).Msg("chat turn failed")
	return http.StatusInternalServerError, response.ErrorBody{
		Error:   msgChatFailed,
		Details: err.Error(),
	}
}
