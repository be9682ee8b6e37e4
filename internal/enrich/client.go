package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/influmetrics/integrations-cli/internal/model"
	"github.com/influmetrics/integrations-cli/pkg/anthropic"
)

// Options configures the LLM enrichment pass.
type Options struct {
	Model       string
	MaxTokens   int64
	MaxAttempts int // attempts per call on invalid JSON
	Concurrency int // parallel items in flight
	BackoffBase time.Duration
}

func (o *Options) defaults() {
	if o.MaxTokens == 0 {
		o.MaxTokens = 4096
	}
	if o.MaxAttempts == 0 {
		o.MaxAttempts = 2
	}
	if o.Concurrency == 0 {
		o.Concurrency = 3
	}
	if o.BackoffBase == 0 {
		o.BackoffBase = 2 * time.Second
	}
}

// Enricher runs the two-pass LLM enrichment (segment extraction, then
// content analysis) over parsed platform items.
type Enricher struct {
	llm  anthropic.Client
	opts Options

	mu    sync.Mutex
	usage anthropic.TokenUsage
}

// Usage returns the accumulated token usage across all calls so far.
func (e *Enricher) Usage() anthropic.TokenUsage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.usage
}

// NewEnricher builds an enricher around an Anthropic client.
func NewEnricher(llm anthropic.Client, opts Options) *Enricher {
	opts.defaults()
	return &Enricher{llm: llm, opts: opts}
}

// EnrichAll fills in the Enrichment field of every item that carries a
// transcript, running items concurrently with bounded parallelism.
// Per-item failures are logged and leave the item unenriched; only context
// cancellation aborts the whole pass.
func (e *Enricher) EnrichAll(ctx context.Context, items []Item, timestamps map[string]*int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for i := range items {
		item := &items[i]
		if !item.HasTranscript || len(item.TranscriptSegments) == 0 {
			continue
		}
		g.Go(func() error {
			rec, err := e.enrichOne(ctx, item, timestamps[item.URL])
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				zap.L().Warn("enrichment failed",
					zap.String("url", item.URL),
					zap.Error(err),
				)
				return nil
			}
			item.Enrichment = rec
			return nil
		})
	}
	return g.Wait()
}

func (e *Enricher) enrichOne(ctx context.Context, item *Item, hint *int) (*model.EnrichmentRecord, error) {
	extraction, err := e.extract(ctx, item.TranscriptSegments, hint)
	if err != nil {
		return nil, err
	}
	analysis, err := e.analyze(ctx, extraction.IntegrationText)
	if err != nil {
		return nil, err
	}
	return &model.EnrichmentRecord{Extraction: *extraction, Analysis: *analysis}, nil
}

// windowing bounds around the timestamp hint, in seconds.
const (
	windowBefore       = 60
	windowAfter        = 300
	windowMinSegments  = 50
	requiredExtraction = "integration_text integration_start_sec integration_duration_sec integration_position is_full_video_ad"
	requiredAnalysis   = "offer_type offer_details landing_type cta_type cta_urgency cta_text has_personal_story personal_story_type pain_points_addressed benefits_mentioned objection_handling social_proof scores overall_tone language product_positioning target_audience_implied competitive_mention price_mentioned"
)

func (e *Enricher) extract(ctx context.Context, segments []model.TranscriptSegment, hint *int) (*model.Extraction, error) {
	windowed := segments
	if hint != nil && len(segments) > windowMinSegments {
		if w := windowTranscript(segments, *hint); len(w) > 0 {
			windowed = w
		}
	}

	segJSON, err := json.Marshal(windowed)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: marshal transcript")
	}
	hintStr := "unknown"
	if hint != nil {
		hintStr = strconv.Itoa(*hint)
	}
	prompt := fmt.Sprintf(extractPromptHeader, hintStr, segJSON)

	raw, err := e.completeJSON(ctx, prompt, "extract", strings.Fields(requiredExtraction))
	if err != nil {
		return nil, err
	}

	var extraction model.Extraction
	if err := remarshal(raw, &extraction); err != nil {
		return nil, eris.Wrap(err, "enrich: decode extraction")
	}
	return &extraction, nil
}

func (e *Enricher) analyze(ctx context.Context, integrationText string) (*model.Analysis, error) {
	prompt := fmt.Sprintf(analyzePromptHeader, integrationText)

	raw, err := e.completeJSON(ctx, prompt, "analyze", strings.Fields(requiredAnalysis))
	if err != nil {
		return nil, err
	}

	scores, ok := raw["scores"].(map[string]any)
	if !ok {
		return nil, eris.New("enrich: 'scores' must be an object")
	}
	for _, dim := range model.ScoreDimensions {
		if _, ok := scores[dim]; !ok {
			return nil, eris.Errorf("enrich: missing score dimension %q", dim)
		}
	}
	clampScores(scores)
	normalizeEnums(raw)

	var analysis model.Analysis
	if err := remarshal(raw, &analysis); err != nil {
		return nil, eris.Wrap(err, "enrich: decode analysis")
	}
	return &analysis, nil
}

// completeJSON sends one prompt and parses the reply as a JSON object with
// the given required keys, retrying on malformed replies.
func (e *Enricher) completeJSON(ctx context.Context, prompt, phase string, required []string) (map[string]any, error) {
	var lastErr error
	for attempt := 1; attempt <= e.opts.MaxAttempts; attempt++ {
		resp, err := e.llm.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     e.opts.Model,
			MaxTokens: e.opts.MaxTokens,
			Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
		})
		if err != nil {
			lastErr = err
		} else {
			resp.Usage.Log(e.opts.Model, phase)
			e.mu.Lock()
			e.usage.Add(resp.Usage)
			e.mu.Unlock()
			raw, perr := parseObject(resp.Text, required)
			if perr == nil {
				return raw, nil
			}
			lastErr = perr
		}

		if attempt < e.opts.MaxAttempts {
			zap.L().Warn("enrichment attempt failed",
				zap.String("phase", phase),
				zap.Int("attempt", attempt),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, eris.Wrap(ctx.Err(), "enrich: cancelled")
			case <-time.After(e.opts.BackoffBase * time.Duration(attempt)):
			}
		}
	}
	return nil, eris.Wrapf(lastErr, "enrich: %s failed after %d attempts", phase, e.opts.MaxAttempts)
}

// windowTranscript keeps segments starting within [hint-before, hint+after].
func windowTranscript(segments []model.TranscriptSegment, hint int) []model.TranscriptSegment {
	start := float64(hint - windowBefore)
	if start < 0 {
		start = 0
	}
	end := float64(hint + windowAfter)

	var out []model.TranscriptSegment
	for _, seg := range segments {
		if seg.Start >= start && seg.Start <= end {
			out = append(out, seg)
		}
	}
	return out
}

// stripFence removes ```json ... ``` wrapping if present.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if i := strings.Index(text, "\n"); i != -1 {
			text = text[i+1:]
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// parseObject decodes a JSON object reply and checks the required keys.
func parseObject(text string, required []string) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(stripFence(text)), &raw); err != nil {
		return nil, eris.Wrap(err, "enrich: invalid JSON reply")
	}
	var missing []string
	for _, key := range required {
		if _, ok := raw[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, eris.Errorf("enrich: reply missing required keys: [%s]", strings.Join(missing, ", "))
	}
	return raw, nil
}

// clampScores forces every score dimension into 1..10; junk becomes the
// midpoint 5.
func clampScores(scores map[string]any) {
	for _, dim := range model.ScoreDimensions {
		scores[dim] = clampScore(scores[dim])
	}
}

func clampScore(v any) int {
	var n int
	switch x := v.(type) {
	case float64:
		n = int(x)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 5
		}
		n = parsed
	default:
		return 5
	}
	if n < 1 {
		return 1
	}
	if n > 10 {
		return 10
	}
	return n
}

// enumFields maps categorical fields to their valid values and the default
// substituted for anything outside the set.
var enumFields = map[string]struct {
	valid    map[string]bool
	fallback string
}{
	"offer_type": {setOf("free_consultation", "free_course", "trial", "promo_code",
		"discount", "bootcamp", "career_change", "other"), "other"},
	"overall_tone": {setOf("professional", "casual", "enthusiastic", "educational",
		"humorous", "inspirational", "conversational", "mixed"), "mixed"},
	"cta_type": {setOf("link_click", "promo_code", "sign_up", "consultation",
		"download", "other"), "other"},
	"landing_type": {setOf("website", "landing_page", "consultation_form", "app",
		"promo_page", "other"), "other"},
}

func setOf(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

// normalizeEnums lowercases categorical fields and substitutes the default
// for values outside the valid set.
func normalizeEnums(raw map[string]any) {
	for field, spec := range enumFields {
		v, ok := raw[field]
		if !ok || v == nil {
			continue
		}
		lowered := strings.ToLower(strings.TrimSpace(fmt.Sprint(v)))
		if spec.valid[lowered] {
			raw[field] = lowered
			continue
		}
		zap.L().Warn("unexpected enum value, normalizing",
			zap.String("field", field),
			zap.Any("value", v),
			zap.String("default", spec.fallback),
		)
		raw[field] = spec.fallback
	}
}

func remarshal(raw map[string]any, out any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
