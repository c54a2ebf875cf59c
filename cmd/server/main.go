package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/api"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/config"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/gateway"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/logging"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/repository"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/repository/migrations"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/repository/redis"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/security"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/service"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/telemetry"
)

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	logFile, err := logging.Setup(cfg.Logging, cfg.IsProduction())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to setup logging")
	}
	defer logFile.Close()

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("backend", cfg.Gateway.BaseURL).
		Str("store", cfg.Store.Driver).
		Msg("Starting trading assistant chat server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics and tracing
	meter, shutdownMetrics, err := telemetry.Setup(ctx, cfg.Metrics, cfg.Logging.Rotate)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to setup metrics")
	}
	defer shutdownMetrics(context.Background())

	metrics, err := telemetry.NewMetrics(meter)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create metrics")
	}

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Tracing, cfg.Logging.Rotate)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to setup tracing")
	}
	defer shutdownTracing(context.Background())

	// Session store
	sessions, storeCloser, err := repository.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open session store")
	}
	defer storeCloser.Close()

	if cfg.Store.AutoMigrate {
		if err := migrate(cfg.Store); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate session store")
		}
	}

	// Redis is optional
	deps := api.Deps{
		JWT: security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.OperatorTokenTTL),
	}
	var cache service.HistoryCache
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()

		cache = redis.NewHistoryCache(redisClient, cfg.Redis.HistoryTTL)
		if cfg.Security.RateLimit.Enabled {
			deps.Limiter = redis.NewRateLimiter(
				redisClient,
				cfg.Security.RateLimit.RequestsPerMinute,
				cfg.Security.RateLimit.Burst,
			)
		}
	} else if cfg.Security.RateLimit.Enabled {
		log.Warn().Msg("Rate limiting requires Redis; chat requests are not limited")
	}

	if !deps.JWT.Enabled() {
		log.Warn().Msg("JWT_SECRET is empty; operator routes are disabled")
	}

	// Services
	gw := gateway.New(gateway.Config{
		BaseURL:       cfg.Gateway.BaseURL,
		Timeout:       cfg.Gateway.Timeout,
		HealthTimeout: cfg.Gateway.HealthTimeout,
		ProbeTimeout:  cfg.Gateway.ProbeTimeout,
	})

	deps.Chat = service.NewChatService(sessions, gw, cache, metrics, service.ChatOptions{
		PersistEnrichment: cfg.Chat.PersistEnrichment,
	})
	deps.History = service.NewHistoryService(sessions, cache)
	deps.Monitor = service.NewHealthMonitor(gw, cfg.Health.PollInterval)
	deps.Prober = gw

	go deps.Monitor.Run(ctx)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(cfg, deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	failed := false
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		log.Error().Err(err).Msg("Server failed")
		failed = true
	}

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
	if failed {
		os.Exit(1)
	}
}

func migrate(cfg config.StoreConfig) error {
	target, err := migrations.TargetFor(cfg)
	if errors.Is(err, migrations.ErrNoMigrations) {
		return nil
	}
	if err != nil {
		return err
	}
	return migrations.Up(target)
}
