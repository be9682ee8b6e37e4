// Package normalize converts raw spreadsheet cell values into canonical
// types. Every function here is pure and total: bad input produces a
// sentinel, never an error.
package normalize

import (
	"strconv"
	"strings"
	"time"
)

// DefaultDateLayouts is the ordered list of explicit date-string layouts.
// Order is a deliberate tie-break: "01/02/2025" parses day-first.
var DefaultDateLayouts = []string{
	"02/01/2006", // day/month/year
	"2006-01-02", // ISO
	"01/02/2006", // month/day/year
}

// Spreadsheet serial day counts are anchored at 1899-12-30, which absorbs
// the historical Lotus leap-year bug (serial 60 = the fictitious
// 1900-02-29).
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Serial values outside (minSerial, maxSerial) are treated as unparseable;
// the range covers roughly years 1900–2173.
const (
	minSerial = 1
	maxSerial = 100000
)

// dateStrategy attempts one interpretation of a raw date cell.
// It returns ("", false) when the strategy does not apply.
type dateStrategy func(s string) (string, bool)

// DateNormalizer converts raw date cells to ISO "YYYY-MM-DD" strings by
// trying an ordered chain of strategies; the first hit wins.
type DateNormalizer struct {
	strategies []dateStrategy
}

// NewDateNormalizer builds a normalizer from an ordered layout list.
// An empty list falls back to DefaultDateLayouts.
func NewDateNormalizer(layouts []string) *DateNormalizer {
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	strategies := make([]dateStrategy, 0, len(layouts)+1)
	for _, layout := range layouts {
		strategies = append(strategies, layoutStrategy(layout))
	}
	strategies = append(strategies, serialStrategy)
	return &DateNormalizer{strategies: strategies}
}

// Normalize converts a raw cell value to "YYYY-MM-DD".
//
// Policy for unparseable input is permissive: the original trimmed string
// comes back unchanged, so bad dates stay visible in the output instead of
// silently vanishing.
func (n *DateNormalizer) Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	for _, try := range n.strategies {
		if iso, ok := try(s); ok {
			return iso
		}
	}
	return s
}

func layoutStrategy(layout string) dateStrategy {
	return func(s string) (string, bool) {
		t, err := time.Parse(layout, s)
		if err != nil {
			return "", false
		}
		return t.Format("2006-01-02"), true
	}
}

// serialStrategy interprets the value as a spreadsheet serial day count.
func serialStrategy(s string) (string, bool) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return "", false
	}
	serial := int(f)
	if serial <= minSerial || serial >= maxSerial {
		return "", false
	}
	return serialEpoch.AddDate(0, 0, serial).Format("2006-01-02"), true
}
