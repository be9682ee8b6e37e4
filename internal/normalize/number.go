package normalize

import (
	"math"
	"strconv"
	"strings"
)

// Number parses a numeric cell that may use either a dot or a comma as the
// decimal separator. Empty cells, the literal "nan" (any case), and parse
// failures all return NaN; the function never fails, so callers can sweep
// whole columns without per-cell error handling.
func Number(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
