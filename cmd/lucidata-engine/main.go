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
	"github.com/lucidata/lucidata/internal/schema"
	"github.com/lucidata/lucidata/internal/translate"
)

func main() {
	cfg, err := config.LoadFromEnv("lucidata-engine")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	completer, err := translate.NewClient(translate.ClientConfig{
		BaseURL:      cfg.AI.BaseURL,
		APIKey:       cfg.AI.APIKey,
		DefaultModel: cfg.AI.Model,
		Temperature:  cfg.AI.Temperature,
		MaxTokens:    cfg.AI.MaxTokens,
		Timeout:      cfg.AI.Timeout,
	})
	if err != nil {
		logger.Error("failed to initialize completion client", slog.Any("error", err))
		os.Exit(1)
	}

	deps := api.Dependencies{
		Logger:            logger,
		Schema:            schema.NewProvider(cfg.Database.DSN, logger),
		Completer:         completer,
		Readiness:         api.CheckAIConfig(cfg),
		DependencyTimeout: time.Second,
	}

	handler := api.NewEngineHandler(cfg, deps)
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
		logger.Info("starting engine server", slog.String("addr", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("engine server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down engine server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
