package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lucidata/lucidata/internal/config"
	"github.com/lucidata/lucidata/internal/observability"
	"github.com/lucidata/lucidata/internal/translate"
)

type processQueryRequest struct {
	Query string `json:"query"`
	Model string `json:"model"`
}

type processQueryResponse struct {
	SQLQuery     string  `json:"sql_query"`
	Explanation  string  `json:"explanation,omitempty"`
	Confidence   float64 `json:"confidence"`
	SQLSource    string  `json:"sql_source"`
	SchemaSource string  `json:"schema_source"`
}

// NewEngineHandler serves the translation service: natural language in,
// schema-grounded SQL out.
func NewEngineHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()
	mountCommon(mux, cfg, deps)

	mux.HandleFunc("POST /process-query", func(w http.ResponseWriter, r *http.Request) {
		handleProcessQuery(deps, w, r)
	})

	return finish(mux, deps)
}

func handleProcessQuery(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Schema == nil || deps.Completer == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "TRANSLATE_NOT_CONFIGURED", "translation dependencies are not configured", false, nil)
		return
	}

	var req processQueryRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid process-query request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUERY_REQUIRED", "query is required", false, nil)
		return
	}

	schemaResult := deps.Schema.Fetch(r.Context())
	prompt := translate.BuildPrompt(req.Query, schemaResult.Descriptor)

	raw, err := deps.Completer.Complete(r.Context(), prompt, req.Model)
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "TRANSLATE_FAILED", "error processing query: "+err.Error(), true, nil)
		return
	}

	result := translate.Parse(raw)
	observability.ObserveTranslation(string(result.Origin), string(schemaResult.Source))
	if deps.Logger != nil {
		deps.Logger.InfoContext(r.Context(), "translated query",
			slog.String("question", req.Query),
			slog.String("sql", result.SQLQuery),
			slog.String("sql_source", string(result.Origin)),
			slog.String("schema_source", string(schemaResult.Source)),
			slog.Float64("confidence", result.Confidence),
		)
	}

	writeJSON(w, http.StatusOK, processQueryResponse{
		SQLQuery:     result.SQLQuery,
		Explanation:  result.Explanation,
		Confidence:   result.Confidence,
		SQLSource:    string(result.Origin),
		SchemaSource: string(schemaResult.Source),
	})
}
