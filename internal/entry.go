// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/redate/internal/api"
	"github.com/starford/redate/internal/journal"
	"github.com/starford/redate/internal/mcpserver"
	"github.com/starford/redate/internal/session"
	"github.com/starford/redate/internal/sse"
	"github.com/starford/redate/internal/watch"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(os.Stdout, opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(cfg, app.logOutput)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.Bool("journal_enabled", cfg.Journal.Enabled),
		slog.String("journal_path", cfg.Journal.Path),
		slog.Bool("watch", cfg.Rename.Watch),
		slog.String("log_level", cfg.App.LogLevel.String()))

	db, err := openJournal(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	// SSE broker.
	broker := sse.NewBroker(cfg.Rename.ProgressThrottle)
	defer broker.Close()

	svcOpts := []session.Option{
		session.WithLogger(logger),
		session.WithEvents(broker),
	}
	if db != nil {
		svcOpts = append(svcOpts, session.WithJournal(db))
	}

	var tracker *watch.Tracker
	if cfg.Rename.Watch {
		tracker = watch.NewTracker(logger, cfg.Rename.WatchDebounce, func(folder string, changes int) {
			broker.Publish(sse.Event{
				Type: sse.TypeFolderChanged,
				Data: map[string]any{"folder": folder, "changes": changes},
			})
		})
		svcOpts = append(svcOpts, session.WithFollower(tracker))
	}

	svc := session.NewService(svcOpts...)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, cfg.Rename.Separator)

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
		if db != nil {
			if err := db.Ping(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"journal unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Follow planned folders and announce outside changes over SSE.
	if tracker != nil {
		g.Go(func() error {
			if err := tracker.Run(gCtx); err != nil {
				logger.Warn("folder watcher stopped", slog.String("error", err.Error()))
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
		defer signal.Stop(quit)

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

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// ServeMCP runs the MCP server on stdin/stdout. Logs go to stderr because
// stdout carries the protocol stream.
func ServeMCP(_ context.Context, opts ...Option) error {
	app, svc, closeFn, err := buildSession(os.Stderr, opts)
	if err != nil {
		return err
	}
	defer closeFn()

	slog.Info("MCP server starting on stdio")
	return mcpserver.New(svc, app.config.Rename.Separator).ServeStdio()
}

// NewSession builds a rename session for one-shot commands. The returned
// function releases the journal.
func NewSession(opts ...Option) (*session.Service, func(), error) {
	_, svc, closeFn, err := buildSession(os.Stderr, opts)
	return svc, closeFn, err
}

func buildSession(defaultOut io.Writer, opts []Option) (*application, *session.Service, func(), error) {
	app, err := newApplication(defaultOut, opts)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger(app.config, app.logOutput)
	slog.SetDefault(logger)

	db, err := openJournal(app.config)
	if err != nil {
		return nil, nil, nil, err
	}

	svcOpts := []session.Option{session.WithLogger(logger)}
	closeFn := func() {}
	if db != nil {
		svcOpts = append(svcOpts, session.WithJournal(db))
		closeFn = func() {
			if err := db.Close(); err != nil {
				logger.Warn("journal close failed", slog.String("error", err.Error()))
			}
		}
	}
	return app, session.NewService(svcOpts...), closeFn, nil
}

func newApplication(defaultOut io.Writer, opts []Option) (*application, error) {
	app := &application{logOutput: defaultOut}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newLogger initializes the structured JSON logger.
func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

func openJournal(cfg *Config) (*journal.DB, error) {
	if !cfg.Journal.Enabled {
		return nil, nil
	}
	db, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return nil, fmt.Errorf("init journal: %w", err)
	}
	return db, nil
}
