package render

import (
	"encoding/json"
	"strings"
	"testing"
)

func sampleRows() []map[string]any {
	return []map[string]any{
		{"model": "Datsun 710", "hp": float64(93)},
		{"model": "Maserati Bora", "hp": float64(335)},
	}
}

func TestFormatEmptyDataReturnsPlaceholder(t *testing.T) {
	resp, err := Format(Request{Format: FormatHTML})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if resp.FormattedData != EmptyPlaceholder {
		t.Fatalf("FormattedData = %q", resp.FormattedData)
	}
	if resp.ContentType != "text/plain" {
		t.Fatalf("ContentType = %q", resp.ContentType)
	}
}

func TestFormatCSV(t *testing.T) {
	resp, err := Format(Request{
		Data:    sampleRows(),
		Columns: []string{"model", "hp"},
		Format:  FormatCSV,
	})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if resp.ContentType != "text/csv" {
		t.Fatalf("ContentType = %q", resp.ContentType)
	}
	lines := strings.Split(strings.TrimSpace(resp.FormattedData), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, body:\n%s", len(lines), resp.FormattedData)
	}
	if lines[0] != "model,hp" {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(lines[2], "335") {
		t.Fatalf("row = %q", lines[2])
	}
}

func TestFormatJSON(t *testing.T) {
	resp, err := Format(Request{
		Data:   sampleRows(),
		Format: FormatJSON,
	})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if resp.ContentType != "application/json" {
		t.Fatalf("ContentType = %q", resp.ContentType)
	}
	var decoded []map[string]any
	if err := json.Unmarshal([]byte(resp.FormattedData), &decoded); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(decoded) != 2 || decoded[1]["model"] != "Maserati Bora" {
		t.Fatalf("decoded = %#v", decoded)
	}
}

func TestFormatHTMLWrapsTableWithTitle(t *testing.T) {
	resp, err := Format(Request{
		Data:        sampleRows(),
		Columns:     []string{"model", "hp"},
		Format:      FormatHTML,
		Title:       "Horsepower",
		Description: "Cars by horsepower",
	})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if resp.ContentType != "text/html" {
		t.Fatalf("ContentType = %q", resp.ContentType)
	}
	if !strings.Contains(resp.FormattedData, `<div class="lucidata-result">`) {
		t.Fatalf("missing wrapper:\n%s", resp.FormattedData)
	}
	if !strings.Contains(resp.FormattedData, "<h3>Horsepower</h3>") {
		t.Fatalf("missing title:\n%s", resp.FormattedData)
	}
	if !strings.Contains(resp.FormattedData, "<p>Cars by horsepower</p>") {
		t.Fatalf("missing description:\n%s", resp.FormattedData)
	}
	if !strings.Contains(resp.FormattedData, "Maserati Bora") {
		t.Fatalf("missing row data:\n%s", resp.FormattedData)
	}
}

func TestFormatDefaultsToHTML(t *testing.T) {
	resp, err := Format(Request{Data: sampleRows()})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if resp.ContentType != "text/html" {
		t.Fatalf("ContentType = %q", resp.ContentType)
	}
}

func TestFormatBarChartVisualization(t *testing.T) {
	resp, err := Format(Request{
		Data:              sampleRows(),
		Columns:           []string{"model", "hp"},
		Format:            FormatJSON,
		VisualizationType: "bar",
		Title:             "Horsepower",
	})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.HasPrefix(resp.Visualization, "data:image/png;base64,") {
		t.Fatalf("Visualization prefix = %q", resp.Visualization[:min(len(resp.Visualization), 40)])
	}
}

func TestFormatSkipsVisualizationWithoutNumericData(t *testing.T) {
	resp, err := Format(Request{
		Data: []map[string]any{
			{"model": "Datsun 710", "color": "blue"},
		},
		Columns:           []string{"model", "color"},
		Format:            FormatJSON,
		VisualizationType: "bar",
	})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if resp.Visualization != "" {
		t.Fatalf("Visualization = %q, want empty", resp.Visualization)
	}
}

func TestDeriveColumnsIsStable(t *testing.T) {
	first := deriveColumns(sampleRows())
	second := deriveColumns(sampleRows())
	if len(first) != 2 || first[0] != "hp" || first[1] != "model" {
		t.Fatalf("columns = %#v", first)
	}
	if first[0] != second[0] || first[1] != second[1] {
		t.Fatalf("column order unstable: %#v vs %#v", first, second)
	}
}
