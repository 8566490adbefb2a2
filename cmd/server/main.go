package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/aaronpowner1970/words-of-plainness-editor/internal/config"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/handler"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/middleware"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/service/annotate"
	llmsvc "github.com/aaronpowner1970/words-of-plainness-editor/internal/service/llm"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/service/session"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/store"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"storage_backend", cfg.StorageBackend,
		"default_model", cfg.DefaultModel,
	)

	// Open the key-value persistence gateway
	ctx := context.Background()
	kv, err := store.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open storage backend: %v", err)
	}
	defer kv.Close()

	// Setup LLM providers
	providerRegistry, err := llmsvc.SetupProviders(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to setup LLM providers: %v", err)
	}

	// Editorial category catalog (built-in, optionally overridden by YAML)
	catalog := annotate.DefaultCatalog()
	if cfg.CategoriesPath != "" {
		catalog, err = annotate.LoadCatalog(cfg.CategoriesPath)
		if err != nil {
			log.Fatalf("Failed to load categories file: %v", err)
		}
		logger.Info("category guidance loaded", "path", cfg.CategoriesPath)
	}

	// Core services
	engine := annotate.NewEngine(providerRegistry, catalog, cfg.DefaultModel, logger)
	debouncer := store.NewDebouncer(kv, logger)
	sessionService := session.NewService(kv, debouncer, engine, providerRegistry, cfg.DefaultModel, logger)

	// Handlers
	sessionHandler := handler.NewSessionHandler(sessionService, logger)
	categoriesHandler := handler.NewCategoriesHandler(catalog, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", sessionHandler.HealthCheck)

	// Session lifecycle and document
	mux.HandleFunc("POST /api/sessions", sessionHandler.CreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", sessionHandler.GetSession)
	mux.HandleFunc("PATCH /api/sessions/{id}/document", sessionHandler.UpdateDocument)
	mux.HandleFunc("POST /api/sessions/{id}/document/new", sessionHandler.NewDocument)

	// Analysis and suggestions
	mux.HandleFunc("POST /api/sessions/{id}/analyze", sessionHandler.Analyze)
	mux.HandleFunc("GET /api/sessions/{id}/suggestions", sessionHandler.ListSuggestions)
	mux.HandleFunc("POST /api/sessions/{id}/suggestions/{sid}/accept", sessionHandler.AcceptSuggestion)
	mux.HandleFunc("POST /api/sessions/{id}/suggestions/{sid}/dismiss", sessionHandler.DismissSuggestion)

	// Whole-document transform
	mux.HandleFunc("POST /api/sessions/{id}/prepare", sessionHandler.Prepare)

	// Version ledger
	mux.HandleFunc("POST /api/sessions/{id}/versions", sessionHandler.SaveVersion)
	mux.HandleFunc("GET /api/sessions/{id}/versions", sessionHandler.ListVersions)
	mux.HandleFunc("POST /api/sessions/{id}/versions/{vid}/restore", sessionHandler.RestoreVersion)
	mux.HandleFunc("DELETE /api/sessions/{id}/versions/{vid}", sessionHandler.DeleteVersion)

	// Assistant chat
	mux.HandleFunc("GET /api/sessions/{id}/chat", sessionHandler.GetChat)
	mux.HandleFunc("POST /api/sessions/{id}/chat", sessionHandler.SendChat)

	// Preferences and category catalog
	mux.HandleFunc("GET /api/sessions/{id}/preferences", sessionHandler.GetPreferences)
	mux.HandleFunc("PUT /api/sessions/{id}/preferences", sessionHandler.UpdatePreferences)
	mux.HandleFunc("GET /api/categories", categoriesHandler.ListCategories)

	// Build middleware chain
	var root http.Handler = mux
	root = middleware.Recovery(logger)(root)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // analysis calls can take a while
		IdleTimeout:  60 * time.Second,
	}

	// Serve until interrupted, then flush pending debounced writes so the
	// last edits reach storage.
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", "error", err)
		}

		sessionService.Flush()
		logger.Info("pending writes flushed")
	}
}
