package translate

import (
	"strconv"
	"strings"
)

const (
	sqlMarker         = "SQL:"
	explanationMarker = "EXPLANATION:"
	confidenceMarker  = "CONFIDENCE:"
)

// FallbackSQL is substituted when no statement could be extracted from a
// model response. It trivially samples the built-in fallback table.
const FallbackSQL = "SELECT * FROM cars LIMIT 10;"

// Parse extracts SQL, explanation, and confidence from a raw model response.
// It never fails. The fields are expected in SQL -> EXPLANATION -> CONFIDENCE
// order; each field is sliced from the text after its marker up to the next
// marker within that remainder. A response with reordered fields therefore
// yields whatever the literal slicing produces.
func Parse(raw string) Result {
	result := Result{Origin: OriginModel}

	if remainder, ok := after(raw, sqlMarker); ok {
		result.SQLQuery = strings.TrimSpace(upTo(remainder, explanationMarker))
	}

	if remainder, ok := after(raw, explanationMarker); ok {
		result.Explanation = strings.TrimSpace(upTo(remainder, confidenceMarker))
	}

	if remainder, ok := after(raw, confidenceMarker); ok {
		value, err := strconv.ParseFloat(strings.TrimSpace(remainder), 64)
		if err != nil {
			// Present but unparseable: uncertain, not zero.
			result.Confidence = 0.5
		} else {
			result.Confidence = value
		}
	}

	if result.SQLQuery == "" {
		result.SQLQuery = FallbackSQL
		result.Origin = OriginFallback
	}
	return result
}

func after(text, marker string) (string, bool) {
	idx := strings.Index(text, marker)
	if idx < 0 {
		return "", false
	}
	return text[idx+len(marker):], true
}

func upTo(text, marker string) string {
	idx := strings.Index(text, marker)
	if idx < 0 {
		return text
	}
	return text[:idx]
}
