package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/api/handler"
	customMiddleware "github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/api/middleware"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/config"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/security"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/service"
)

// Deps are the services behind the HTTP surface
type Deps struct {
	Chat    *service.ChatService
	History *service.HistoryService
	Monitor *service.HealthMonitor
	Prober  handler.Prober
	// Limiter is optional; chat is unlimited when nil
	Limiter customMiddleware.Limiter
	JWT     *security.JWTManager
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	chatHandler := handler.NewChatHandler(deps.Chat)
	historyHandler := handler.NewHistoryHandler(deps.History)
	healthHandler := handler.NewHealthHandler(deps.Monitor, deps.History, deps.Prober)
	wsHandler := handler.NewWebSocketHandler(deps.Chat, deps.History, deps.Monitor, cfg.Security.CORSOrigins)

	jwtManager := deps.JWT
	if jwtManager == nil {
		jwtManager = security.NewJWTManager("", 0)
	}
	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)

	routes := func(r chi.Router) {
		// long-lived streams stay outside the request timeout
		r.Group(func(r chi.Router) {
			if deps.Limiter != nil {
				r.Use(customMiddleware.NewRateLimitMiddleware(deps.Limiter).Limit)
			}
			r.Get("/ws", wsHandler.Stream)
		})

		r.Group(func(r chi.Router) {
			if cfg.Server.MiddlewareTimeout > 0 {
				r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
			}

			r.Get("/health", healthHandler.Health)
			r.Get("/health/status", healthHandler.Status)
			r.Get("/ready", healthHandler.Ready)

			r.Group(func(r chi.Router) {
				if deps.Limiter != nil {
					r.Use(customMiddleware.NewRateLimitMiddleware(deps.Limiter).Limit)
				}
				r.Post("/chat", chatHandler.Send)
			})

			r.Get("/history", historyHandler.Get)
			r.Delete("/history", historyHandler.Delete)

			// Operator routes
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireOperator)

				r.Get("/debug", healthHandler.Debug)
				r.Post("/cache/flush", healthHandler.FlushCache)
			})
		})
	}

	routes(r)
	r.Route("/api", routes)

	return r
}
