package api

import (
	"encoding/json"
	"net/http"

	"github.com/lucidata/lucidata/internal/config"
	"github.com/lucidata/lucidata/internal/render"
)

type formatRequest struct {
	Data              []map[string]any `json:"data"`
	Columns           []string         `json:"columns"`
	Format            string           `json:"format"`
	VisualizationType string           `json:"visualization_type"`
	Title             string           `json:"title"`
	Description       string           `json:"description"`
}

type formatResponse struct {
	FormattedData string `json:"formatted_data"`
	Visualization string `json:"visualization,omitempty"`
	ContentType   string `json:"content_type"`
}

// NewFormatterHandler serves the presentation service.
func NewFormatterHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()
	mountCommon(mux, cfg, deps)

	mux.HandleFunc("POST /format", func(w http.ResponseWriter, r *http.Request) {
		handleFormat(w, r)
	})

	return finish(mux, deps)
}

func handleFormat(w http.ResponseWriter, r *http.Request) {
	var req formatRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid format request body", false, map[string]any{"details": err.Error()})
		return
	}

	resp, err := render.Format(render.Request{
		Data:              req.Data,
		Columns:           req.Columns,
		Format:            req.Format,
		VisualizationType: req.VisualizationType,
		Title:             req.Title,
		Description:       req.Description,
	})
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "FORMAT_FAILED", "error formatting data: "+err.Error(), false, nil)
		return
	}

	writeJSON(w, http.StatusOK, formatResponse{
		FormattedData: resp.FormattedData,
		Visualization: resp.Visualization,
		ContentType:   resp.ContentType,
	})
}
