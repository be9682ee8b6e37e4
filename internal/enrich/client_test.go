package enrich

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/influmetrics/integrations-cli/internal/model"
	"github.com/influmetrics/integrations-cli/pkg/anthropic"
)

const extractionReply = `{
	"integration_text": "try our bootcamp today",
	"integration_start_sec": 331,
	"integration_duration_sec": 95,
	"integration_position": "middle",
	"is_full_video_ad": false
}`

const analysisReply = `{
	"offer_type": "Discount",
	"offer_details": "20% off first month",
	"landing_type": "landing_page",
	"cta_type": "promo_code",
	"cta_urgency": "high",
	"cta_text": "use code SAVE20",
	"has_personal_story": true,
	"personal_story_type": "career_change",
	"pain_points_addressed": ["dead-end job"],
	"benefits_mentioned": ["flexible schedule"],
	"objection_handling": "light",
	"social_proof": "testimonial",
	"overall_tone": "enthusiastic",
	"language": "en",
	"product_positioning": "career springboard",
	"target_audience_implied": "career changers",
	"competitive_mention": false,
	"price_mentioned": true,
	"scores": {
		"urgency": 8, "authenticity": 7, "storytelling": 6, "benefit_clarity": 9,
		"emotional_appeal": 12, "specificity": "7", "humor": 0, "professionalism": "junk"
	}
}`

func transcriptOf(n int) []model.TranscriptSegment {
	segments := make([]model.TranscriptSegment, n)
	for i := range segments {
		segments[i] = model.TranscriptSegment{Text: "seg", Start: float64(i * 10), Duration: 10}
	}
	return segments
}

func TestEnrichAll(t *testing.T) {
	mock := &anthropic.MockClient{Responses: []anthropic.MessageResponse{
		{Text: extractionReply},
		{Text: analysisReply},
	}}
	e := NewEnricher(mock, Options{Model: "test-model", Concurrency: 1})

	items := []Item{{
		PlatformStats: model.PlatformStats{
			URL:                "https://youtu.be/uTc3U2Cqen4?t=331",
			HasTranscript:      true,
			TranscriptSegments: transcriptOf(10),
		},
	}}
	ts := 331
	err := e.EnrichAll(context.Background(), items, map[string]*int{items[0].URL: &ts})
	require.NoError(t, err)

	enr := items[0].Enrichment
	require.NotNil(t, enr)
	assert.Equal(t, "try our bootcamp today", enr.Extraction.IntegrationText)
	require.NotNil(t, enr.Extraction.IntegrationStartSec)
	assert.Equal(t, 331.0, *enr.Extraction.IntegrationStartSec)

	// Enum casing normalized.
	assert.Equal(t, "discount", enr.Analysis.OfferType)
	// Scores clamped: 12 → 10, 0 → 1, "7" parsed, junk → 5.
	assert.Equal(t, 10, enr.Analysis.Scores.EmotionalAppeal)
	assert.Equal(t, 1, enr.Analysis.Scores.Humor)
	assert.Equal(t, 7, enr.Analysis.Scores.Specificity)
	assert.Equal(t, 5, enr.Analysis.Scores.Professionalism)
}

func TestEnrichAllAccumulatesUsage(t *testing.T) {
	mock := &anthropic.MockClient{Responses: []anthropic.MessageResponse{
		{Text: extractionReply, Usage: anthropic.TokenUsage{InputTokens: 100, OutputTokens: 20}},
		{Text: analysisReply, Usage: anthropic.TokenUsage{InputTokens: 50, OutputTokens: 30}},
	}}
	e := NewEnricher(mock, Options{Model: "test-model", Concurrency: 1})

	items := []Item{{
		PlatformStats: model.PlatformStats{
			URL:                "https://youtu.be/uTc3U2Cqen4",
			HasTranscript:      true,
			TranscriptSegments: transcriptOf(10),
		},
	}}
	require.NoError(t, e.EnrichAll(context.Background(), items, nil))

	usage := e.Usage()
	assert.Equal(t, int64(150), usage.InputTokens)
	assert.Equal(t, int64(50), usage.OutputTokens)
}

func TestEnrichAllSkipsItemsWithoutTranscript(t *testing.T) {
	mock := &anthropic.MockClient{Responses: []anthropic.MessageResponse{{Text: "{}"}}}
	e := NewEnricher(mock, Options{Model: "test-model"})

	items := []Item{{PlatformStats: model.PlatformStats{URL: "u", HasTranscript: false}}}
	require.NoError(t, e.EnrichAll(context.Background(), items, nil))
	assert.Nil(t, items[0].Enrichment)
	assert.Empty(t, mock.Requests)
}

func TestEnrichFailureLeavesItemUnenriched(t *testing.T) {
	mock := &anthropic.MockClient{Responses: []anthropic.MessageResponse{{Text: "not json at all"}}}
	e := NewEnricher(mock, Options{Model: "test-model", MaxAttempts: 1})

	items := []Item{{
		PlatformStats: model.PlatformStats{
			URL:                "u",
			HasTranscript:      true,
			TranscriptSegments: transcriptOf(3),
		},
	}}
	require.NoError(t, e.EnrichAll(context.Background(), items, nil))
	assert.Nil(t, items[0].Enrichment)
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced no language", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFence(tt.in))
		})
	}
}

func TestParseObjectMissingKeys(t *testing.T) {
	_, err := parseObject(`{"a":1}`, []string{"a", "b", "c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b")
	assert.Contains(t, err.Error(), "c")
}

func TestWindowTranscript(t *testing.T) {
	segments := transcriptOf(100) // starts 0..990

	windowed := windowTranscript(segments, 500)
	require.NotEmpty(t, windowed)
	assert.Equal(t, 440.0, windowed[0].Start)
	assert.Equal(t, 800.0, windowed[len(windowed)-1].Start)
}

func TestWindowTranscriptNearStart(t *testing.T) {
	windowed := windowTranscript(transcriptOf(100), 10)
	assert.Equal(t, 0.0, windowed[0].Start)
}

func TestExtractUsesWindowOnlyForLongTranscripts(t *testing.T) {
	mock := &anthropic.MockClient{Responses: []anthropic.MessageResponse{{Text: extractionReply}}}
	e := NewEnricher(mock, Options{Model: "test-model"})

	hint := 500
	_, err := e.extract(context.Background(), transcriptOf(60), &hint)
	require.NoError(t, err)

	// Hint at 500s with a 60x10s transcript: only segments in the window
	// should appear in the prompt.
	prompt := mock.Requests[0].Messages[0].Content
	assert.NotContains(t, prompt, `"start":0,`)
	assert.True(t, strings.Contains(prompt, `"start":440`))
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"in range", float64(7), 7},
		{"above", float64(15), 10},
		{"below", float64(0), 1},
		{"string number", "3", 3},
		{"string junk", "high", 5},
		{"nil", nil, 5},
		{"bool", true, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampScore(tt.in))
		})
	}
}
