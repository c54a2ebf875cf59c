package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/api/response"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/service"
)

const (
	msgSessionRequired = "SessionId is required"
	msgHistoryFailed   = "Failed to fetch chat history"
	msgClearFailed     = "Failed to clear chat history"
	msgHistoryCleared  = "Chat history cleared"
)

// HistoryHandler handles session history endpoints
type HistoryHandler struct {
	historyService *service.HistoryService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(historyService *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// Get handles GET /history?sessionId=
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")

	msgs, err := h.historyService.List(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionIDRequired) {
			response.BadRequest(w, msgSessionRequired)
			return
		}
		log.Error().Err(err).Str("session_id", sessionID).Msg("history fetch failed")
		response.Fail(w, http.StatusInternalServerError, response.ErrorBody{
			Error:   msgHistoryFailed,
			Details: err.Error(),
		})
		return
	}

	response.OK(w, map[string]any{"messages": msgs})
}

// Delete handles DELETE /history?sessionId=
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")

	if err := h.historyService.Clear(r.Context(), sessionID); err != nil {
		if errors.Is(err, service.ErrSessionIDRequired) {
			response.BadRequest(w, msgSessionRequired)
			return
		}
		log.Error().Err(err).Str("session_id", sessionID).Msg("history clear failed")
		response.Fail(w, http.StatusInternalServerError, response.ErrorBody{
			Error:   msgClearFailed,
			Details: err.Error(),
		})
		return
	}

	response.OK(w, map[string]any{"message": msgHistoryCleared})
}
