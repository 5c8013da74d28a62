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

	"github.com/docbridge/docbridge/internal/config"
	"github.com/docbridge/docbridge/internal/db"
	httpapi "github.com/docbridge/docbridge/internal/http"
)

// shutdownTimeout bounds the drain of in-flight requests; past it the
// process exits even if a request is hung on the database.
const shutdownTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// A failed first connect must not kill the process: the listener stays
	// up and serves 503s while the manager retries in the background.
	manager := db.NewManager(cfg.MongoURI, cfg.Database)
	go manager.Start(ctx)

	handlers := httpapi.NewHandlers(manager)
	router := httpapi.Router(handlers, cfg.APIKey, cfg.MaxBodyBytes)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		slog.Info("API listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	drainCtx, drainCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer drainCancel()

	if err := srv.Shutdown(drainCtx); err != nil {
		slog.Error("shutdown did not drain cleanly", "err", err)
	}
	if err := manager.Close(drainCtx); err != nil {
		slog.Error("closing mongodb connection", "err", err)
	}
}
