package render

import (
	"bytes"
	"encoding/base64"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
)

// renderChart draws the requested chart and returns it as a PNG data URI.
// Inputs that cannot be charted (no numeric column, unknown type, render
// failure) yield an empty string rather than an error: the tabular output is
// still useful without the picture.
func renderChart(data []map[string]any, columns []string, vizType, title string) string {
	labels, values := chartSeries(data, columns)
	if len(values) == 0 {
		return ""
	}

	var buf bytes.Buffer
	var err error
	switch vizType {
	case "bar":
		err = renderBar(labels, values, title, &buf)
	case "line":
		err = renderLine(values, title, &buf)
	case "pie":
		err = renderPie(labels, values, title, &buf)
	default:
		err = renderBar(labels, values, title, &buf)
	}
	if err != nil {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// chartSeries picks the label and value columns: first column for labels and
// second for values when both exist, else the first numeric column with row
// indexes as labels.
func chartSeries(data []map[string]any, columns []string) ([]string, []float64) {
	if len(columns) >= 2 {
		labels := make([]string, 0, len(data))
		values := make([]float64, 0, len(data))
		for _, row := range data {
			value, ok := toFloat(row[columns[1]])
			if !ok {
				break
			}
			labels = append(labels, cellString(row[columns[0]]))
			values = append(values, value)
		}
		if len(values) == len(data) && len(values) > 0 {
			return labels, values
		}
	}

	for _, column := range columns {
		values := make([]float64, 0, len(data))
		for _, row := range data {
			value, ok := toFloat(row[column])
			if !ok {
				break
			}
			values = append(values, value)
		}
		if len(values) == len(data) && len(values) > 0 {
			labels := make([]string, len(values))
			for i := range labels {
				labels[i] = strconv.Itoa(i)
			}
			return labels, values
		}
	}
	return nil, nil
}

func renderBar(labels []string, values []float64, title string, buf *bytes.Buffer) error {
	bars := make([]chart.Value, 0, len(values))
	for i, value := range values {
		bars = append(bars, chart.Value{Label: labels[i], Value: value})
	}
	graph := chart.BarChart{
		Title:  title,
		Width:  1000,
		Height: 600,
		Bars:   bars,
	}
	return graph.Render(chart.PNG, buf)
}

func renderLine(values []float64, title string, buf *bytes.Buffer) error {
	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}
	graph := chart.Chart{
		Title:  title,
		Width:  1000,
		Height: 600,
		Series: []chart.Series{
			chart.ContinuousSeries{XValues: xs, YValues: values},
		},
	}
	return graph.Render(chart.PNG, buf)
}

func renderPie(labels []string, values []float64, title string, buf *bytes.Buffer) error {
	slices := make([]chart.Value, 0, len(values))
	for i, value := range values {
		slices = append(slices, chart.Value{Label: labels[i], Value: value})
	}
	graph := chart.PieChart{
		Title:  title,
		Width:  1000,
		Height: 600,
		Values: slices,
	}
	return graph.Render(chart.PNG, buf)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
