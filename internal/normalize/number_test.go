package normalize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"comma decimal", "2,6", 2.6},
		{"dot decimal", "3.14", 3.14},
		{"integer", "11000", 11000.0},
		{"negative", "-1,5", -1.5},
		{"with spaces", " 42 ", 42.0},
		{"zero", "0", 0},
		{"scientific", "1e5", 100000.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Number(tt.raw))
		})
	}
}

func TestNumberNaN(t *testing.T) {
	for _, raw := range []string{"", "   ", "nan", "NaN", "NAN", "abc", "12,34,56", "2.6.1"} {
		t.Run("raw="+raw, func(t *testing.T) {
			assert.True(t, math.IsNaN(Number(raw)))
		})
	}
}
