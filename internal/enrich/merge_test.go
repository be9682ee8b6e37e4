package enrich

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/influmetrics/integrations-cli/internal/metrics"
	"github.com/influmetrics/integrations-cli/internal/model"
)

func sampleItem() Item {
	story := true
	return Item{
		PlatformStats: model.PlatformStats{
			URL:          "https://youtu.be/uTc3U2Cqen4",
			Platform:     "youtube",
			VideoID:      "uTc3U2Cqen4",
			Title:        "My honest review",
			ViewCount:    100000,
			LikeCount:    4000,
			CommentCount: 1000,
		},
		Enrichment: &model.EnrichmentRecord{
			Analysis: model.Analysis{
				OfferType:           "discount",
				OverallTone:         "casual",
				HasPersonalStory:    &story,
				PainPointsAddressed: []string{"low salary", "boring job"},
				Scores:              model.Scores{Urgency: 7, Authenticity: 9},
			},
		},
	}
}

func TestLookup(t *testing.T) {
	items := []Item{sampleItem()}
	lookup := Lookup(items)

	require.Contains(t, lookup, "https://youtu.be/uTc3U2Cqen4")
	assert.Equal(t, "uTc3U2Cqen4", lookup["https://youtu.be/uTc3U2Cqen4"].VideoID)
}

func TestLookupSkipsEmptyURL(t *testing.T) {
	items := []Item{{}}
	assert.Empty(t, Lookup(items))
}

func TestMergeLeftJoin(t *testing.T) {
	records := []model.IntegrationRecord{
		{Name: "a", AdLink: "https://youtu.be/uTc3U2Cqen4", FactReach: 80000},
		{Name: "b", AdLink: "https://youtu.be/nomatch0000"},
	}
	merged := Merge(records, Lookup([]Item{sampleItem()}))
	require.Len(t, merged, 2)

	require.NotNil(t, merged[0].Platform)
	assert.Equal(t, "My honest review", merged[0].Platform.Title)
	require.NotNil(t, merged[0].Enrichment)
	assert.Equal(t, "discount", merged[0].Enrichment.Analysis.OfferType)

	// Missing join is silent: the row survives unenriched.
	assert.Nil(t, merged[1].Platform)
	assert.Nil(t, merged[1].Enrichment)
}

func TestLoadItemsMissingFileIsEmpty(t *testing.T) {
	items, err := LoadItems("/nonexistent/enriched.json")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLoadItemsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enriched.json")
	data := `[{"url":"u1","platform":"youtube","view_count":10,
		"enrichment":{"extraction":{"integration_text":"buy now"},
		"analysis":{"offer_type":"discount","scores":{"urgency":7}}}}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	items, err := LoadItems(path)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "u1", items[0].URL)
	require.NotNil(t, items[0].Enrichment)
	assert.Equal(t, "buy now", items[0].Enrichment.Extraction.IntegrationText)
	assert.Equal(t, 7, items[0].Enrichment.Analysis.Scores.Urgency)
}

func TestRenderFlattening(t *testing.T) {
	records := []model.IntegrationRecord{
		{Name: "a", AdLink: "https://youtu.be/uTc3U2Cqen4", Budget: 5000, FactReach: 80000,
			PurchaseFTotal: math.NaN()},
		{Name: "b", AdLink: "plain.mp4"},
	}
	merged := Merge(records, Lookup([]Item{sampleItem()}))
	metrics.Annotate(merged)

	tbl := Render(merged)
	require.Len(t, tbl.Rows, 2)
	require.Equal(t, len(tbl.Header), len(tbl.Rows[0]))
	require.Equal(t, len(tbl.Header), len(tbl.Rows[1]))

	idx := tbl.ColumnIndex()
	row := tbl.Rows[0]
	assert.Equal(t, "discount", row[idx["enrichment_offer_type"]])
	assert.Equal(t, "low salary | boring job", row[idx["enrichment_pain_points_addressed"]])
	assert.Equal(t, "7", row[idx["score_urgency"]])
	assert.Equal(t, "100000", row[idx["view_count"]])
	assert.Equal(t, "0.0625", row[idx["cost_per_view"]])
	assert.Equal(t, "0.05", row[idx["engagement_rate"]])
	assert.Equal(t, "false", row[idx["has_purchases"]])
	// NaN metrics render as empty cells.
	assert.Equal(t, "", row[idx["cost_per_purchase"]])

	// Unenriched row: empty enrichment cells, metrics still present.
	unenriched := tbl.Rows[1]
	assert.Equal(t, "", unenriched[idx["enrichment_offer_type"]])
	assert.Equal(t, "", unenriched[idx["score_urgency"]])
	assert.Equal(t, "false", unenriched[idx["has_purchases"]])
}
