// The Math Council - AI mathematician debate server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AbdelalimB1729/The-Math-Council/internal/api"
	"github.com/AbdelalimB1729/The-Math-Council/internal/config"
	"github.com/AbdelalimB1729/The-Math-Council/internal/debate"
	"github.com/AbdelalimB1729/The-Math-Council/internal/generator"
	"github.com/AbdelalimB1729/The-Math-Council/internal/hub"
	"github.com/AbdelalimB1729/The-Math-Council/internal/middleware"
	"github.com/AbdelalimB1729/The-Math-Council/internal/store"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Pick the response generation backend.
	var gen generator.Generator
	if cfg.AIEnabled() {
		gen = generator.NewOpenRouterClient(cfg.OpenRouter.APIKey, cfg.OpenRouter.BaseURL, cfg.OpenRouter.Model)
		slog.Info("OpenRouter generation backend configured")
	} else {
		gen = generator.NewSimulated()
		slog.Info("OPENROUTER_API_KEY not set, responses will be simulated")
	}

	// Initialize services.
	eventHub := hub.New()
	orc := debate.NewOrchestrator(repo, gen, eventHub, cfg.SessionCacheTTL)

	// Initialize handlers.
	healthHandler := api.NewHealthHandler(repo)
	debateHandler := api.NewDebateHandler(orc, repo)
	wsHandler := hub.NewWebSocketHandler(eventHub, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	// Routes.
	healthHandler.RegisterHealth(r)
	debateHandler.RegisterRoutes(r)

	// WebSocket endpoint for debate listeners.
	r.Get("/ws/debate", wsHandler.ServeHTTP)

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		// No write timeout: turn production can hold a response open for as
		// long as the generation backend takes.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the session cache sweeper.
	orc.StartCacheSweeper(ctx, cfg.CacheSweepInterval)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
