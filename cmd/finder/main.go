package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tokebay/capitalfinder/config"
	"github.com/Tokebay/capitalfinder/internal/app"
	"github.com/Tokebay/capitalfinder/internal/app/handlers"
	"github.com/Tokebay/capitalfinder/internal/app/storage"
	"github.com/Tokebay/capitalfinder/internal/logger"
	"github.com/Tokebay/capitalfinder/internal/restcountries"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(context.Background(), config.ParseFlags()); err != nil {
		fmt.Fprintln(os.Stderr, "Error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Log.Sync()

	history, err := storage.New(ctx, cfg)
	if err != nil {
		logger.Log.Error("Error creating history storage", zap.Error(err))
		return err
	}
	defer history.Close()

	client := restcountries.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout)
	finder := handlers.NewCapitalFinder(cfg, client, history)

	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           newRouter(finder),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Log.Info("Server is starting",
			zap.String("address", cfg.ServerAddress),
			zap.String("upstream", cfg.UpstreamBaseURL))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		logger.Log.Error("Failed to start server", zap.Error(err))
		return err
	case <-ctx.Done():
		logger.Log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Log.Info("Server gracefully stopped")
	return nil
}

func newRouter(finder *handlers.CapitalFinder) chi.Router {
	r := chi.NewRouter()
	r.Use(logger.LoggerMiddleware)
	r.Use(logger.RecoveryMiddleware)
	r.Use(app.GzipMiddleware)

	r.Get("/", finder.LookupHandler)
	r.Get("/api/history", finder.HistoryHandler)
	r.Get("/ping", finder.PingHandler)

	return r
}
