package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lucidata/lucidata/internal/config"
	"github.com/lucidata/lucidata/internal/pipeline"
)

type translateAndExecuteRequest struct {
	NaturalQuery string `json:"natural_query"`
	Model        string `json:"model"`
}

type translateAndExecuteResponse struct {
	NaturalQuery string           `json:"natural_query"`
	SQLQuery     string           `json:"sql_query"`
	Results      []map[string]any `json:"results"`
	Explanation  string           `json:"explanation"`
	Metadata     routerMetadata   `json:"metadata"`
}

type routerMetadata struct {
	Confidence          float64 `json:"confidence"`
	ExecutionTimeMs     int64   `json:"execution_time_ms"`
	LLMProcessingTimeMs int64   `json:"llm_processing_time_ms"`
	TotalTimeMs         int64   `json:"total_time_ms"`
}

// NewRouterHandler serves the orchestrator: one natural-language question in,
// translated SQL plus its result rows out.
func NewRouterHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()
	mountCommon(mux, cfg, deps)

	mux.HandleFunc("POST /translate-and-execute", func(w http.ResponseWriter, r *http.Request) {
		handleTranslateAndExecute(deps, w, r)
	})

	return finish(mux, deps)
}

func handleTranslateAndExecute(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Pipeline == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "PIPELINE_NOT_CONFIGURED", "pipeline dependency is not configured", false, nil)
		return
	}

	var req translateAndExecuteRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid translate-and-execute request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(req.NaturalQuery) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUERY_REQUIRED", "natural_query is required", false, nil)
		return
	}

	start := time.Now()

	llmStart := time.Now()
	translation, err := deps.Pipeline.Translate(r.Context(), req.NaturalQuery, req.Model)
	if err != nil {
		writePipelineError(w, r, err)
		return
	}
	llmElapsed := time.Since(llmStart)

	execStart := time.Now()
	result, err := deps.Pipeline.Execute(r.Context(), translation.SQLQuery)
	if err != nil {
		writePipelineError(w, r, err)
		return
	}
	execElapsed := time.Since(execStart)

	writeJSON(w, http.StatusOK, translateAndExecuteResponse{
		NaturalQuery: req.NaturalQuery,
		SQLQuery:     translation.SQLQuery,
		Results:      result.Results,
		Explanation:  translation.Explanation,
		Metadata: routerMetadata{
			Confidence:          translation.Confidence,
			ExecutionTimeMs:     execElapsed.Milliseconds(),
			LLMProcessingTimeMs: llmElapsed.Milliseconds(),
			TotalTimeMs:         time.Since(start).Milliseconds(),
		},
	})
}

func writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	var upstream *pipeline.UpstreamError
	if errors.As(err, &upstream) {
		switch upstream.Stage {
		case pipeline.StageTranslate:
			writeError(r.Context(), w, http.StatusBadGateway, "TRANSLATE_FAILED", upstream.Error(), true, nil)
		case pipeline.StageExecute:
			writeError(r.Context(), w, http.StatusBadRequest, "EXECUTE_FAILED", upstream.Error(), false, nil)
		default:
			writeError(r.Context(), w, http.StatusInternalServerError, "PIPELINE_FAILED", upstream.Error(), true, nil)
		}
		return
	}
	writeError(r.Context(), w, http.StatusInternalServerError, "PIPELINE_FAILED", err.Error(), true, nil)
}
