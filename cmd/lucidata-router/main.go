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

	"github.com/lucidata/lucidata/internal/api"
	"github.com/lucidata/lucidata/internal/config"
	"github.com/lucidata/lucidata/internal/observability"
	"github.com/lucidata/lucidata/internal/pipeline"
)

func main() {
	cfg, err := config.LoadFromEnv("lucidata-router")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	upstream, err := pipeline.NewClient(pipeline.Config{
		EngineURL: cfg.Router.EngineURL,
		RunnerURL: cfg.Router.RunnerURL,
		Timeout:   cfg.Router.Timeout,
	})
	if err != nil {
		logger.Error("failed to initialize pipeline client", slog.Any("error", err))
		os.Exit(1)
	}

	deps := api.Dependencies{
		Logger:            logger,
		Pipeline:          upstream,
		DependencyTimeout: time.Second,
	}

	handler := api.NewRouterHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting router server", slog.String("addr", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("router server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down router server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
