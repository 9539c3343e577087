package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lucidata/lucidata/internal/config"
	"github.com/lucidata/lucidata/internal/runner"
)

type executeQueryRequest struct {
	Query  string         `json:"query"`
	Params map[string]any `json:"params"`
}

type executeQueryResponse struct {
	Results  []map[string]any `json:"results"`
	Metadata executeMetadata  `json:"metadata"`
}

type executeMetadata struct {
	RowCount             int      `json:"row_count"`
	ColumnNames          []string `json:"column_names"`
	QueryExecutionTimeMs int64    `json:"query_execution_time_ms"`
}

// NewRunnerHandler serves the execution service: one SQL statement in, rows
// out, with failures split into statement-level (400) and configuration or
// connectivity (500) problems.
func NewRunnerHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()
	mountCommon(mux, cfg, deps)

	mux.HandleFunc("POST /execute-query", func(w http.ResponseWriter, r *http.Request) {
		handleExecuteQuery(deps, w, r)
	})

	return finish(mux, deps)
}

func handleExecuteQuery(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Executor == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "EXECUTE_NOT_CONFIGURED", "execution dependency is not configured", false, nil)
		return
	}

	var req executeQueryRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid execute-query request body", false, map[string]any{"details": err.Error()})
		return
	}

	result, err := deps.Executor.Execute(r.Context(), runner.Request{SQL: req.Query, Params: req.Params})
	if err != nil {
		writeExecuteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, executeQueryResponse{
		Results: result.Rows,
		Metadata: executeMetadata{
			RowCount:             result.RowCount,
			ColumnNames:          result.Columns,
			QueryExecutionTimeMs: result.Duration.Milliseconds(),
		},
	})
}

func writeExecuteError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, runner.ErrNotConfigured) {
		writeError(r.Context(), w, http.StatusInternalServerError, "DATABASE_NOT_CONFIGURED", "database connection not configured", false, nil)
		return
	}

	var queryErr *runner.QueryError
	if errors.As(err, &queryErr) {
		status := http.StatusBadRequest
		if queryErr.Kind == runner.KindConnection {
			status = http.StatusInternalServerError
		}
		writeError(r.Context(), w, status, "QUERY_FAILED", queryErr.Message, queryErr.Kind == runner.KindConnection, map[string]any{"kind": string(queryErr.Kind)})
		return
	}

	writeError(r.Context(), w, http.StatusInternalServerError, "EXECUTE_FAILED", err.Error(), true, nil)
}
