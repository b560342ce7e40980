package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tgyn-admin-api/internal/api"
	"github.com/tgyn-admin-api/internal/auth"
	"github.com/tgyn-admin-api/internal/config"
	"github.com/tgyn-admin-api/internal/gemini"
	"github.com/tgyn-admin-api/internal/repository"
	"github.com/tgyn-admin-api/internal/service"
	"github.com/tgyn-admin-api/internal/sheetdb"
	"github.com/tgyn-admin-api/internal/telegram"
	"github.com/tgyn-admin-api/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting TGYN Admin Portal API server...")

	// Load .env if present; real env vars win
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	// Connect to the Google Sheets backing store
	store, err := sheetdb.New(ctx, &cfg.Sheets, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to sheet store")
	}

	// Ensure the portal worksheets exist
	if err := store.Bootstrap(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to bootstrap portal worksheets")
	}

	// Initialize repositories
	repos := repository.New(store)

	// Token manager for login and the auth middleware
	tokens := auth.NewTokenManager(&cfg.Auth)

	// Optional AI backend. Without an API key the dependent operations
	// degrade instead of blocking startup.
	var generator service.ContentGenerator
	geminiClient, err := gemini.New(ctx, &cfg.Gemini, log)
	switch {
	case errors.Is(err, gemini.ErrNotConfigured):
		log.Warn().Msg("GEMINI_API_KEY not set, AI extraction disabled")
	case err != nil:
		log.Fatal().Err(err).Msg("Failed to initialize Gemini client")
	default:
		generator = geminiClient
	}

	// Optional Telegram delivery
	var notifier service.Notifier
	telegramClient, err := telegram.New(&cfg.Telegram, log)
	switch {
	case errors.Is(err, telegram.ErrNotConfigured):
		log.Warn().Msg("Telegram credentials not set, delivery disabled")
	case err != nil:
		log.Fatal().Err(err).Msg("Failed to initialize Telegram client")
	default:
		notifier = telegramClient
	}

	// Initialize services
	services := service.NewServices(repos, tokens, generator, notifier, log)

	// Initialize router
	router := api.NewRouter(services, store, tokens, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
