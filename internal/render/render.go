// Package render shapes query results into a requested output representation
// (html, csv, json) and optionally a chart image encoded as a data URI.
package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	FormatHTML = "html"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// EmptyPlaceholder is returned for empty row sets instead of an empty or
// malformed document.
const EmptyPlaceholder = "No data to format"

type Request struct {
	Data              []map[string]any
	Columns           []string
	Format            string
	VisualizationType string
	Title             string
	Description       string
}

type Response struct {
	FormattedData string
	Visualization string
	ContentType   string
}

// Format renders the rows in the requested representation, defaulting to
// html. Unknown formats render as html as well, mirroring the formatter's
// permissive contract.
func Format(req Request) (Response, error) {
	if len(req.Data) == 0 {
		return Response{FormattedData: EmptyPlaceholder, ContentType: "text/plain"}, nil
	}

	columns := req.Columns
	if len(columns) == 0 {
		columns = deriveColumns(req.Data)
	}

	var resp Response
	switch strings.ToLower(req.Format) {
	case FormatCSV:
		resp = Response{FormattedData: renderTable(req.Data, columns, true), ContentType: "text/csv"}
	case FormatJSON:
		encoded, err := json.Marshal(req.Data)
		if err != nil {
			return Response{}, fmt.Errorf("encode rows: %w", err)
		}
		resp = Response{FormattedData: string(encoded), ContentType: "application/json"}
	default:
		resp = Response{FormattedData: renderHTML(req, columns), ContentType: "text/html"}
	}

	if req.VisualizationType != "" {
		resp.Visualization = renderChart(req.Data, columns, req.VisualizationType, req.Title)
	}
	return resp, nil
}

func renderHTML(req Request, columns []string) string {
	var b strings.Builder
	b.WriteString(`<div class="lucidata-result">`)
	if req.Title != "" {
		b.WriteString("<h3>" + req.Title + "</h3>")
	}
	if req.Description != "" {
		b.WriteString("<p>" + req.Description + "</p>")
	}
	b.WriteString(renderTable(req.Data, columns, false))
	b.WriteString("</div>")
	return b.String()
}

func renderTable(data []map[string]any, columns []string, csv bool) string {
	tw := table.NewWriter()
	tw.Style().HTML.CSSClass = "table table-striped table-hover"
	// Column names pass through as-is; the default style uppercases them.
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, 0, len(columns))
	for _, column := range columns {
		header = append(header, column)
	}
	tw.AppendHeader(header)

	for _, row := range data {
		cells := make(table.Row, 0, len(columns))
		for _, column := range columns {
			cells = append(cells, cellString(row[column]))
		}
		tw.AppendRow(cells)
	}

	if csv {
		return tw.RenderCSV()
	}
	return tw.RenderHTML()
}

func cellString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// deriveColumns produces a stable column order when the caller did not
// supply one: every key seen across the rows, sorted.
func deriveColumns(data []map[string]any) []string {
	seen := map[string]struct{}{}
	columns := make([]string, 0)
	for _, row := range data {
		for key := range row {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			columns = append(columns, key)
		}
	}
	sort.Strings(columns)
	return columns
}
