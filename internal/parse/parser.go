package parse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/influmetrics/integrations-cli/internal/model"
	"github.com/influmetrics/integrations-cli/internal/urlclass"
	"github.com/influmetrics/integrations-cli/pkg/youtube"
)

// Options tunes the YouTube parsing pipeline.
type Options struct {
	BatchSize   int
	MaxAttempts int
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

func (o *Options) defaults() {
	if o.BatchSize <= 0 || o.BatchSize > youtube.MaxIDsPerCall {
		o.BatchSize = youtube.MaxIDsPerCall
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.BackoffBase <= 0 {
		o.BackoffBase = 2 * time.Second
	}
	if o.BackoffMax <= 0 {
		o.BackoffMax = 30 * time.Second
	}
}

// Parser turns youtube ad links into PlatformStats via the Data API
// and the caption endpoint.
type Parser struct {
	videos      youtube.Client
	transcripts youtube.TranscriptClient
	opts        Options
	log         *zap.Logger
}

func NewParser(videos youtube.Client, transcripts youtube.TranscriptClient, opts Options) *Parser {
	opts.defaults()
	return &Parser{
		videos:      videos,
		transcripts: transcripts,
		opts:        opts,
		log:         zap.L().Named("parse"),
	}
}

// ParseBatch fetches metadata for every URL: video metadata in groups,
// then channel subscribers in groups, then transcripts one by one.
// URLs that yield no video ID or no API item get an Error entry instead
// of failing the batch.
func (p *Parser) ParseBatch(ctx context.Context, urls []string) ([]model.PlatformStats, error) {
	type pair struct {
		url string
		id  string
	}

	var pairs []pair
	var results []model.PlatformStats
	for _, u := range urls {
		id, ok := urlclass.ExtractVideoID(u)
		if !ok {
			results = append(results, model.PlatformStats{
				URL:      u,
				Platform: string(model.FormatYouTube),
				Error:    fmt.Sprintf("could not extract video_id from URL: %s", u),
			})
			continue
		}
		pairs = append(pairs, pair{url: u, id: id})
	}

	ids := make([]string, len(pairs))
	for i, pr := range pairs {
		ids[i] = pr.id
	}

	videos, err := p.fetchVideos(ctx, ids)
	if err != nil {
		return nil, err
	}

	channelIDs := make(map[string]bool)
	for _, v := range videos {
		if v.ChannelID != "" {
			channelIDs[v.ChannelID] = true
		}
	}
	subscribers := p.fetchSubscribers(ctx, channelIDs)

	total := len(pairs)
	for idx, pr := range pairs {
		v, ok := videos[pr.id]
		if !ok {
			results = append(results, model.PlatformStats{
				URL:      pr.url,
				Platform: string(model.FormatYouTube),
				VideoID:  pr.id,
				Error:    "video not found (may be private or deleted)",
			})
			continue
		}

		stats := model.PlatformStats{
			URL:             pr.url,
			Platform:        string(model.FormatYouTube),
			VideoID:         v.ID,
			Title:           v.Title,
			ChannelName:     v.ChannelName,
			ViewCount:       float64(v.ViewCount),
			LikeCount:       float64(v.LikeCount),
			CommentCount:    float64(v.CommentCount),
			DurationSeconds: v.DurationSeconds,
		}
		if subs, ok := subscribers[v.ChannelID]; ok {
			stats.ChannelSubscribers = subs.Subscribers
		}

		p.log.Info("fetching transcript",
			zap.Int("n", idx+1),
			zap.Int("total", total),
			zap.String("video_id", pr.id),
		)
		p.attachTranscript(ctx, &stats)

		results = append(results, stats)
	}

	p.summarize(results)
	return results, nil
}

func (p *Parser) fetchVideos(ctx context.Context, ids []string) (map[string]youtube.Video, error) {
	videos := make(map[string]youtube.Video, len(ids))
	for start := 0; start < len(ids); start += p.opts.BatchSize {
		end := start + p.opts.BatchSize
		if end > len(ids) {
			end = len(ids)
		}
		p.log.Info("fetching metadata batch",
			zap.Int("from", start+1),
			zap.Int("to", end),
			zap.Int("total", len(ids)),
		)
		batch, err := p.videos.ListVideos(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		for _, v := range batch {
			videos[v.ID] = v
		}
	}
	return videos, nil
}

// fetchSubscribers is best effort: a failed channels batch logs a
// warning and leaves those channels at zero.
func (p *Parser) fetchSubscribers(ctx context.Context, channelIDs map[string]bool) map[string]youtube.ChannelStats {
	ids := make([]string, 0, len(channelIDs))
	for id := range channelIDs {
		ids = append(ids, id)
	}

	subscribers := make(map[string]youtube.ChannelStats, len(ids))
	for start := 0; start < len(ids); start += p.opts.BatchSize {
		end := start + p.opts.BatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch, err := p.videos.ListChannels(ctx, ids[start:end])
		if err != nil {
			p.log.Warn("batch subscriber fetch failed", zap.Error(err))
			continue
		}
		for id, s := range batch {
			subscribers[id] = s
		}
	}
	return subscribers
}

// attachTranscript fetches captions with retries. ErrNoTranscript is
// permanent and not retried.
func (p *Parser) attachTranscript(ctx context.Context, stats *model.PlatformStats) {
	var lastErr error
	for attempt := 1; attempt <= p.opts.MaxAttempts; attempt++ {
		transcript, err := p.transcripts.FetchTranscript(ctx, stats.VideoID)
		if err == nil {
			stats.HasTranscript = true
			stats.TranscriptLanguage = transcript.Language
			stats.TranscriptText = transcript.FullText()
			stats.TranscriptSegments = make([]model.TranscriptSegment, len(transcript.Segments))
			for i, seg := range transcript.Segments {
				stats.TranscriptSegments[i] = model.TranscriptSegment{
					Text:     seg.Text,
					Start:    seg.Start,
					Duration: seg.Duration,
				}
			}
			return
		}

		lastErr = err
		if errors.Is(err, youtube.ErrNoTranscript) || errors.Is(ctx.Err(), context.Canceled) {
			break
		}
		if attempt < p.opts.MaxAttempts {
			wait := p.opts.BackoffBase * (1 << (attempt - 1))
			if wait > p.opts.BackoffMax {
				wait = p.opts.BackoffMax
			}
			p.log.Warn("transcript fetch failed, retrying",
				zap.String("video_id", stats.VideoID),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
		}
	}
	stats.TranscriptError = lastErr.Error()
}

func (p *Parser) summarize(results []model.PlatformStats) {
	var success, failed, withTranscript int
	for _, r := range results {
		if r.Error != "" {
			failed++
			continue
		}
		success++
		if r.HasTranscript {
			withTranscript++
		}
	}
	p.log.Info("youtube parsing complete",
		zap.Int("success", success),
		zap.Int("failed", failed),
		zap.Int("with_transcript", withTranscript),
		zap.Int("total", len(results)),
	)
}
