// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/MatrixedMind/MatrixedMind/internal/api"
	"github.com/MatrixedMind/MatrixedMind/internal/blob"
	"github.com/MatrixedMind/MatrixedMind/internal/events"
	"github.com/MatrixedMind/MatrixedMind/internal/indexer"
	"github.com/MatrixedMind/MatrixedMind/internal/mcpserver"
	"github.com/MatrixedMind/MatrixedMind/internal/noteservice"
	"github.com/MatrixedMind/MatrixedMind/internal/notestore"
	"github.com/MatrixedMind/MatrixedMind/internal/watcher"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger. MCP stdio mode owns stdout,
	// so logs go to stderr there.
	logOut := os.Stdout
	if app.mcpMode {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_backend", cfg.Storage.Backend),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize object store.
	var (
		store   blob.Store
		fsStore *blob.FS
	)
	switch cfg.Storage.Backend {
	case StorageBackendGCS:
		gcs, err := blob.NewGCS(ctx, cfg.Storage.Bucket, cfg.Storage.CredentialsFile)
		if err != nil {
			return fmt.Errorf("init gcs storage: %w", err)
		}
		defer gcs.Close()
		store = gcs
	case StorageBackendFS:
		if err := os.MkdirAll(cfg.Storage.Path, 0o755); err != nil {
			return fmt.Errorf("create storage dir: %w", err)
		}
		fs, err := blob.NewFS(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("init fs storage: %w", err)
		}
		store = fs
		fsStore = fs
	default:
		return fmt.Errorf("unknown storage backend: %q", cfg.Storage.Backend)
	}

	notes := notestore.New(store)
	idx := indexer.NewMaintainer(store, logger)
	reader := indexer.NewReader(store, logger)
	broker := events.NewBroker()
	defer broker.Close()

	svc := noteservice.New(notes, idx, reader, broker, logger)

	if app.mcpMode {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(svc).ServeStdio()
	}

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api/v1.
	r.Mount("/api/v1", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Key, broker))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the local store for external edits.
	if fsStore != nil && cfg.Storage.Watch {
		g.Go(func() error {
			if err := watcher.Watch(gCtx, fsStore, idx, logger, broker); err != nil {
				logger.Warn("watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
