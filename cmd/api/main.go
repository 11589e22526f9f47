package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dersdefteri/internal/app"
	"dersdefteri/internal/config"
	"dersdefteri/internal/handlers"
	"dersdefteri/internal/http"
	"dersdefteri/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API turns Turkish textbook PDFs into flashcards and analyzes daily writing exercises.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Dersdefteri API
//   description: |
//     Upload textbook chapters as PDFs, extract grammar and vocabulary flashcards,
//     and get corrections, style variants and idioms for short Turkish texts.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
//   - multipart/form-data
// produces:
//   - application/json

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := app.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		_ = a.Close()
	}()

	// A nil *QdrantStore must not become a non-nil interface.
	var vectorStore vectorstore.VectorStore
	if a.VectorStore != nil {
		vectorStore = a.VectorStore
	}

	deps := &http.Deps{
		Auth:           a.Auth,
		Authenticator:  a.Auth,
		Documents:      a.Documents,
		Uploader:       a.Uploader,
		Processor:      a.Pipeline,
		Extractor:      a.Invoker,
		Deck:           a.Deck,
		Writing:        a.Writing,
		Mistakes:       a.Mistakes,
		Dashboard:      a.Dashboard,
		Objects:        a.Objects,
		Health:         handlers.NewHealthHandler(a.DB, vectorStore, cfg.QdrantCollection, cfg.AnthropicAPIKey != ""),
		AllowedOrigin:  cfg.AllowedOrigin,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	router := http.NewRouter(deps)

	srv := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting API server", "addr", srv.Addr, "search_enabled", cfg.SearchEnabled())
	slog.Debug("LLM configuration", "base_url", cfg.AnthropicBaseURL, "model", cfg.AnthropicModel)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.Fatalf("API server failed to start: %v", err)
	}
}
