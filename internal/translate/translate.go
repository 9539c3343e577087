// Package translate turns a natural-language question into a SQL statement.
// It builds a schema-grounded prompt, calls an OpenAI-compatible chat
// completion endpoint, and extracts the statement from the response with a
// fixed marker protocol (SQL: / EXPLANATION: / CONFIDENCE:).
package translate

import "context"

// Origin records whether the SQL statement came out of the model response or
// from the fixed fallback statement.
type Origin string

const (
	OriginModel    Origin = "model"
	OriginFallback Origin = "fallback"
)

// Result is the parsed outcome of one translation. Confidence is 0.0 when
// the response carried no CONFIDENCE field and 0.5 when the field was present
// but not a number.
type Result struct {
	SQLQuery    string
	Explanation string
	Confidence  float64
	Origin      Origin
}

// Completer is the model backend used by the engine handler. Implemented by
// Client; faked in tests.
type Completer interface {
	Complete(ctx context.Context, prompt, model string) (string, error)
}
