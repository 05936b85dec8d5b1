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
	"slices"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/inkwell/internal/api"
	"github.com/starford/inkwell/internal/ingest"
	"github.com/starford/inkwell/internal/sse"
	"github.com/starford/inkwell/internal/watcher"
)

// Run starts server mode with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("version", app.version),
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_root", cfg.Vault.Root),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	v, err := OpenVault(cfg, logger, broker)
	if err != nil {
		return err
	}
	defer v.Close()

	// Run initial sync.
	if err := v.Sync(logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	uploads := api.NewAttachmentHandler(v.Store.Root(), v.Store, v.Atts)
	apiRouter := api.NewRouter(v.Notes, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, uploads)

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

	// Attachment files, for rendered notes.
	r.Get("/attachments/{filename}", uploads.ServeFile)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Drafts watcher: settled drafts are ingested.
	g.Go(func() error {
		return watcher.Watch(gCtx, watcher.Config{
			Root:       v.Store.Root(),
			Dirs:       []string{cfg.Vault.Drafts},
			Extensions: cfg.Ingest.Extensions,
			Debounce:   cfg.Ingest.Debounce,
		}, logger.With(slog.String("watch", "drafts")), func(kind, rel string) {
			if kind != watcher.KindChanged {
				return
			}
			rep := v.Notes.Ingest(gCtx, rel, ingest.Options{KeepSource: cfg.Ingest.KeepSource})
			for _, res := range rep.Results {
				if res.Failed() {
					logger.Warn("auto-ingest failed",
						slog.String("draft", res.Draft),
						slog.String("stage", string(res.Stage)),
						slog.String("reason", res.Reason))
				}
			}
		})
	})

	// Document watcher: keeps the index in step with edits made outside inkwell.
	docDirs := slices.DeleteFunc(slices.Clone(cfg.Vault.DocumentDirs()), func(d string) bool {
		return d == cfg.Vault.Drafts
	})
	if len(docDirs) > 0 {
		g.Go(func() error {
			return watcher.Watch(gCtx, watcher.Config{
				Root:       v.Store.Root(),
				Dirs:       docDirs,
				Extensions: []string{".md"},
				Debounce:   cfg.Ingest.Debounce,
			}, logger.With(slog.String("watch", "documents")), func(kind, rel string) {
				var err error
				if kind == watcher.KindRemoved {
					err = v.Notes.RemoveFile(rel)
				} else {
					err = v.Notes.IndexFile(rel)
				}
				if err != nil {
					logger.Warn("index update failed", slog.String("path", rel), slog.String("error", err.Error()))
					return
				}
				broker.DocumentChanged(kind, rel)
			})
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

// errShutdown cancels the group so the watchers stop with the server.
var errShutdown = errors.New("shutdown")
