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

	"github.com/starford/ansuz/internal/api"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/orchestrator"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/state"
	"github.com/starford/ansuz/internal/vault"
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

	// Initialize structured JSON logger. MCP mode owns stdout, so logs go
	// to stderr there.
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
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("index_tag", cfg.Index.IndexTag),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}

	// Initialize vault storage.
	store, err := vault.NewFS(cfg.Vault.Path)
	if err != nil {
		return fmt.Errorf("init vault: %w", err)
	}

	// Initialize cycle journal.
	db, err := state.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init state store: %w", err)
	}
	defer db.Close()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Index orchestrator.
	orch := orchestrator.New(orchestrator.Config{
		IndexTag:        cfg.Index.IndexTag,
		MetaIndexTag:    cfg.Index.MetaIndexTag,
		PriorityTag:     cfg.Index.PriorityTag,
		ExcludedFolders: cfg.Vault.ExcludedFolders,
		ShowTitle:       cfg.Index.ShowTitle,
		UpdateInterval:  cfg.Index.UpdateInterval(),
		Debounce:        cfg.Index.Debounce(),
		ModifyDebounce:  cfg.Index.ModifyDebounce(),
		WriteRetries:    cfg.Index.WriteRetries,
		RetryBackoff:    cfg.Index.RetryBackoff(),
	}, store, db, logger, broker.PublishEngineEvent)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(runCtx)

	// Vault watcher feeding the orchestrator's scheduler.
	events := make(chan vault.Event, 256)
	g.Go(func() error {
		defer close(events)
		return vault.Watch(gCtx, store.Root(), logger, func(ev vault.Event) {
			select {
			case events <- ev:
			case <-gCtx.Done():
			}
		})
	})

	// Orchestrator scheduling loop.
	g.Go(func() error {
		return orch.Run(gCtx, events)
	})

	if app.mcpMode {
		// MCP stdio transport instead of the HTTP server.
		g.Go(func() error {
			srv := mcpserver.New(orch, db, store)
			logger.Info("Starting MCP server on stdio")
			return srv.ServeStdio()
		})
		return waitShutdown(g, gCtx, cancel, logger, nil)
	}

	// Build API router.
	h := api.NewHandler(orch, db, store, cfg.Vault.ExcludedFolders)
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token, http.HandlerFunc(broker.ServeHTTP))

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	return waitShutdown(g, gCtx, cancel, logger, httpServer)
}

// waitShutdown blocks on shutdown signals, stops the HTTP server if one is
// running, and waits for the errgroup to drain.
func waitShutdown(g *errgroup.Group, gCtx context.Context, cancel context.CancelFunc, logger *slog.Logger, httpServer *http.Server) error {
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down...")
		cancel()

		if httpServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
			}
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Stopped successfully")
	return nil
}
