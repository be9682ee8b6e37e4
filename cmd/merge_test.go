//go:build !integration

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/influmetrics/integrations-cli/internal/enrich"
	"github.com/influmetrics/integrations-cli/internal/table"
)

func TestRowMaps(t *testing.T) {
	tbl := &table.Table{
		Header: []string{"Date", "Name", "Budget"},
		Rows: [][]string{
			{"15.03.2024", "Tech Reviews", "5000"},
			{"20.03.2024", "Lifestyle Daily", ""},
		},
	}

	maps := rowMaps(tbl)
	require.Len(t, maps, 2)
	assert.Equal(t, "5000", maps[0]["Budget"])
	assert.Equal(t, "Lifestyle Daily", maps[1]["Name"])

	// Empty cells are omitted rather than serialized as "".
	_, ok := maps[1]["Budget"]
	assert.False(t, ok)
}

func TestRowMaps_RaggedRow(t *testing.T) {
	tbl := &table.Table{
		Header: []string{"Date", "Name"},
		Rows:   [][]string{{"15.03.2024", "Tech Reviews", "extra"}},
	}

	maps := rowMaps(tbl)
	require.Len(t, maps, 1)
	assert.Len(t, maps[0], 2)
}

func TestRenderedMergeIsJSONSafe(t *testing.T) {
	merged := serveFixture()
	rendered := enrich.Render(merged)

	// The loser row has NaN funnel cells; the rendered table must carry
	// them as empty strings so the JSON artifact never sees a NaN.
	for _, row := range rendered.Rows {
		for _, cell := range row {
			assert.NotContains(t, cell, "NaN")
		}
	}
}
