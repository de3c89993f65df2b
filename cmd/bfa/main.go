package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/ops-console-bfa-go/internal/config"
	"github.com/boddenberg/ops-console-bfa-go/internal/handler"
	"github.com/boddenberg/ops-console-bfa-go/internal/infra/cache"
	"github.com/boddenberg/ops-console-bfa-go/internal/infra/client"
	"github.com/boddenberg/ops-console-bfa-go/internal/infra/conversation"
	"github.com/boddenberg/ops-console-bfa-go/internal/infra/observability"
	"github.com/boddenberg/ops-console-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/ops-console-bfa-go/internal/infra/supabase"
	"github.com/boddenberg/ops-console-bfa-go/internal/port"
	"github.com/boddenberg/ops-console-bfa-go/internal/service"
	"github.com/boddenberg/ops-console-bfa-go/internal/shortcut"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("use_supabase", cfg.UseSupabase),
		zap.Bool("redis", cfg.RedisAddr != ""),
		zap.Bool("auth_required", cfg.AuthRequired),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Duration("shortcut_window", cfg.ShortcutWindow),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "ops-console-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("console-catalog", logger)

	// --- Catalog ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var catalog port.CatalogFetcher
	if cfg.UseSupabase && cfg.SupabaseURL != "" {
		logger.Info("using Supabase as catalog backend",
			zap.String("supabase_url", cfg.SupabaseURL),
		)
		catalog = supabase.NewClient(
			httpClient,
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			cb,
			resilienceCfg,
			logger,
		)
	} else {
		logger.Info("using console API as catalog backend",
			zap.String("console_api_url", cfg.ConsoleAPIURL),
		)
		catalog = client.NewCatalogClient(httpClient, cfg.ConsoleAPIURL, cb, resilienceCfg)
	}

	// --- Conversation log ---
	var stores port.ConversationStoreFactory
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := conversation.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cancel()
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		stores = conversation.NewRedisFactory(rdb, cfg.SessionTTL)
		logger.Info("conversation log stored in redis", zap.String("addr", cfg.RedisAddr))
	} else {
		stores = conversation.NewMemoryFactory()
		logger.Warn("conversation log kept in memory, sessions are lost on restart")
	}

	// --- Sessions ---
	sessionCache := cache.New[*service.Session](cfg.SessionTTL)
	defer sessionCache.Close()

	// --- Services ---
	manager := service.NewSessionManager(
		catalog,
		sessionCache,
		stores,
		observability.NewEventNotifier(logger, metrics),
		observability.NewEventNavigator(logger, metrics),
		service.SessionConfig{ShortcutWindow: cfg.ShortcutWindow, Clock: shortcut.SystemClock{}},
		logger,
	)
	dispatcher := service.NewDispatcher(
		catalog,
		observability.NewDiagnostics(logger, metrics),
		nil,
		metrics,
		logger,
	)
	sessionCache.OnEvict(manager.Evicted)
	assistantSvc := service.NewAssistant(manager, service.NewClassifier(), dispatcher, metrics, logger)

	var verifier *service.TokenVerifier
	if cfg.AuthRequired {
		verifier = service.NewTokenVerifier(cfg.JWTSecret)
		logger.Info("assistant routes require a bearer token")
	} else {
		logger.Warn("auth disabled, assistant routes are open")
	}

	// --- Router ---
	router := handler.NewRouter(assistantSvc, catalog, verifier, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
