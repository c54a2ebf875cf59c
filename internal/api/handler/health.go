package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/api/middleware"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/api/response"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/gateway"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/service"
)

// Prober runs backend connectivity diagnostics
type Prober interface {
	Probe(ctx context.Context) *gateway.ProbeReport
}

// HealthHandler handles health, readiness and operator diagnostics
type HealthHandler struct {
	monitor        *service.HealthMonitor
	historyService *service.HistoryService
	prober         Prober
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(monitor *service.HealthMonitor, historyService *service.HistoryService, prober Prober) *HealthHandler {
	return &HealthHandler{
		monitor:        monitor,
		historyService: historyService,
		prober:         prober,
	}
}

// Health checks the trading bot live
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	snap := h.monitor.Check(r.Context())
	timestamp := snap.CheckedAt.Format(time.RFC3339Nano)

	if snap.Status != service.StatusOnline {
		response.JSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"error":     snap.Error,
			"timestamp": timestamp,
		})
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"backend":   snap.Backend,
		"timestamp": timestamp,
	})
}

// Status returns the last polled backend status
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]any{"backend": h.monitor.Status()})
}

// Ready returns readiness of the session store
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.historyService.Ready(r.Context()); err != nil {
		log.Warn().Err(err).Msg("session store not ready")
		response.Error(w, http.StatusServiceUnavailable, "session store not ready")
		return
	}

	response.OK(w, map[string]any{"status": "ready"})
}

// Debug probes the backend with each known payload shape
func (h *HealthHandler) Debug(w http.ResponseWriter, r *http.Request) {
	operator, _ := middleware.GetOperator(r.Context())
	log.Info().Str("operator", operator).Msg("running backend probe")

	response.JSON(w, http.StatusOK, h.prober.Probe(r.Context()))
}

// FlushCache drops all cached histories
func (h *HealthHandler) FlushCache(w http.ResponseWriter, r *http.Request) {
	n, err := h.historyService.FlushCache(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrCacheDisabled) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "failed to flush cache")
		return
	}

	response.OK(w, map[string]any{"keys_deleted": n})
}
