// Package api wires the Lucidata services' HTTP surfaces: translation
// (process-query), execution (execute-query), formatting (format), and the
// orchestrating router (translate-and-execute).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lucidata/lucidata/internal/config"
	"github.com/lucidata/lucidata/internal/observability"
	"github.com/lucidata/lucidata/internal/pipeline"
	"github.com/lucidata/lucidata/internal/runner"
	"github.com/lucidata/lucidata/internal/schema"
	"github.com/lucidata/lucidata/internal/translate"
)

type ReadinessCheck func(ctx context.Context) error

// SchemaFetcher provides schema context for translation. Fetch never fails.
type SchemaFetcher interface {
	Fetch(ctx context.Context) schema.Result
}

// SQLExecutor runs one statement against the target database.
type SQLExecutor interface {
	Execute(ctx context.Context, req runner.Request) (runner.Result, error)
}

// Pipeline chains translation and execution across services.
type Pipeline interface {
	Translate(ctx context.Context, question, model string) (pipeline.Translation, error)
	Execute(ctx context.Context, sqlQuery string) (pipeline.ExecuteResult, error)
}

type Dependencies struct {
	Logger            *slog.Logger
	Readiness         ReadinessCheck
	DependencyTimeout time.Duration
	Schema            SchemaFetcher
	Completer         translate.Completer
	Executor          SQLExecutor
	Pipeline          Pipeline
}

// mountCommon adds the root, health, readiness, and metrics routes every
// service exposes.
func mountCommon(mux *http.ServeMux, cfg config.Config, deps Dependencies) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "message": cfg.Service.Name + " is running"})
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": cfg.Service.Name})
	})
	mux.HandleFunc("GET /v1/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
			return
		}
		timeout := deps.DependencyTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := deps.Readiness(ctx); err != nil {
			writeError(r.Context(), w, http.StatusServiceUnavailable, "NOT_READY", err.Error(), true, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})
	mux.Handle("GET /v1/metrics", promhttp.Handler())
}

func finish(mux *http.ServeMux, deps Dependencies) http.Handler {
	middlewares := []func(http.Handler) http.Handler{
		observability.TraceMiddleware,
		observability.MetricsMiddleware,
	}
	if deps.Logger != nil {
		middlewares = append(middlewares, observability.LoggingMiddleware(deps.Logger))
	}
	return chain(mux, middlewares...)
}

func CheckDatabaseDSN(cfg config.Config) ReadinessCheck {
	return func(_ context.Context) error {
		if cfg.Database.DSN == "" {
			return errors.New("database url is not configured")
		}
		return nil
	}
}

func CheckAIConfig(cfg config.Config) ReadinessCheck {
	return func(_ context.Context) error {
		if cfg.AI.APIKey == "" {
			return errors.New("model api key is not configured")
		}
		return nil
	}
}

func CombineReadinessChecks(checks ...ReadinessCheck) ReadinessCheck {
	filtered := make([]ReadinessCheck, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}
	return func(ctx context.Context) error {
		for _, check := range filtered {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, code, message string, retryable bool, extra map[string]any) {
	writeJSON(w, status, map[string]any{
		"error_code": code,
		"message":    message,
		"retryable":  retryable,
		"context":    extra,
		"trace_id":   observability.TraceIDFromContext(ctx),
	})
}
