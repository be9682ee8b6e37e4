package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDateNormalizer(t *testing.T) {
	n := NewDateNormalizer(nil)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"day month year", "27/10/2025", "2025-10-27"},
		{"iso passthrough", "2025-04-01", "2025-04-01"},
		{"ambiguous day first wins", "01/02/2025", "2025-02-01"},
		{"month day year fallback", "12/25/2025", "2025-12-25"},
		{"impossible day returned unchanged", "04/31/2025", "04/31/2025"},
		{"excel serial", "45748", "2025-04-01"},
		{"excel serial string with spaces", " 45748 ", "2025-04-01"},
		{"excel serial with comma decimal", "45748,0", "2025-04-01"},
		{"serial below range", "1", "1"},
		{"serial above range", "100000", "100000"},
		{"garbage returned unchanged", "not-a-date", "not-a-date"},
		{"month name returned unchanged", "October", "October"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.raw))
		})
	}
}

func TestDateNormalizerLaterSerial(t *testing.T) {
	n := NewDateNormalizer(nil)
	got := n.Normalize("45952")
	assert.Regexp(t, `^2025-`, got)
}

func TestDateNormalizerDeterministic(t *testing.T) {
	n := NewDateNormalizer(nil)
	for i := 0; i < 3; i++ {
		assert.Equal(t, "2025-04-01", n.Normalize("45748"))
		assert.Equal(t, "weird", n.Normalize("weird"))
	}
}

func TestDateNormalizerCustomLayouts(t *testing.T) {
	n := NewDateNormalizer([]string{"2006.01.02"})
	assert.Equal(t, "2025-10-27", n.Normalize("2025.10.27"))
	// Serial fallback still applies after explicit layouts.
	assert.Equal(t, "2025-04-01", n.Normalize("45748"))
}
