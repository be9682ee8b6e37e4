package parse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/influmetrics/integrations-cli/pkg/youtube"
)

type fakeAPI struct {
	videos      map[string]youtube.Video
	channels    map[string]youtube.ChannelStats
	videoCalls  [][]string
	channelErrs bool
}

func (f *fakeAPI) ListVideos(_ context.Context, ids []string) ([]youtube.Video, error) {
	f.videoCalls = append(f.videoCalls, ids)
	var out []youtube.Video
	for _, id := range ids {
		if v, ok := f.videos[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeAPI) ListChannels(_ context.Context, ids []string) (map[string]youtube.ChannelStats, error) {
	if f.channelErrs {
		return nil, assert.AnError
	}
	out := make(map[string]youtube.ChannelStats)
	for _, id := range ids {
		if s, ok := f.channels[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

type fakeTranscripts struct {
	byVideo map[string]*youtube.Transcript
	err     error
	calls   int
}

func (f *fakeTranscripts) FetchTranscript(_ context.Context, videoID string) (*youtube.Transcript, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	tr, ok := f.byVideo[videoID]
	if !ok {
		return nil, youtube.ErrNoTranscript
	}
	return tr, nil
}

func testVideo() youtube.Video {
	return youtube.Video{
		ID:              "uTc3U2Cqen4",
		Title:           "How I changed careers",
		ChannelID:       "UCabc",
		ChannelName:     "Some Channel",
		ViewCount:       100000,
		LikeCount:       4000,
		CommentCount:    150,
		DurationSeconds: 893,
	}
}

func TestParseBatch(t *testing.T) {
	api := &fakeAPI{
		videos:   map[string]youtube.Video{"uTc3U2Cqen4": testVideo()},
		channels: map[string]youtube.ChannelStats{"UCabc": {ID: "UCabc", Subscribers: 250000}},
	}
	transcripts := &fakeTranscripts{byVideo: map[string]*youtube.Transcript{
		"uTc3U2Cqen4": {
			Language: "ru",
			Segments: []youtube.TranscriptSegment{{Text: "привет", Start: 0, Duration: 2}},
		},
	}}

	p := NewParser(api, transcripts, Options{})
	results, err := p.ParseBatch(context.Background(), []string{"https://youtu.be/uTc3U2Cqen4?t=331"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "https://youtu.be/uTc3U2Cqen4?t=331", r.URL)
	assert.Equal(t, "youtube", r.Platform)
	assert.Equal(t, "uTc3U2Cqen4", r.VideoID)
	assert.Equal(t, 100000.0, r.ViewCount)
	assert.Equal(t, int64(250000), r.ChannelSubscribers)
	assert.True(t, r.HasTranscript)
	assert.Equal(t, "ru", r.TranscriptLanguage)
	assert.Equal(t, "привет", r.TranscriptText)
	require.Len(t, r.TranscriptSegments, 1)
	assert.Empty(t, r.Error)
}

func TestParseBatchUnextractableURL(t *testing.T) {
	p := NewParser(&fakeAPI{}, &fakeTranscripts{}, Options{})
	results, err := p.ParseBatch(context.Background(), []string{"https://example.com/video"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Error, "could not extract video_id")
}

func TestParseBatchMissingVideo(t *testing.T) {
	p := NewParser(&fakeAPI{}, &fakeTranscripts{}, Options{})
	results, err := p.ParseBatch(context.Background(), []string{"https://youtu.be/uTc3U2Cqen4"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "uTc3U2Cqen4", results[0].VideoID)
	assert.Contains(t, results[0].Error, "not found")
}

func TestParseBatchSplitsMetadataCalls(t *testing.T) {
	api := &fakeAPI{videos: map[string]youtube.Video{}}
	p := NewParser(api, &fakeTranscripts{}, Options{BatchSize: 2})

	urls := []string{
		"https://youtu.be/aaaaaaaaaaa",
		"https://youtu.be/bbbbbbbbbbb",
		"https://youtu.be/ccccccccccc",
	}
	_, err := p.ParseBatch(context.Background(), urls)
	require.NoError(t, err)

	require.Len(t, api.videoCalls, 2)
	assert.Len(t, api.videoCalls[0], 2)
	assert.Len(t, api.videoCalls[1], 1)
}

func TestParseBatchChannelFailureIsNotFatal(t *testing.T) {
	api := &fakeAPI{
		videos:      map[string]youtube.Video{"uTc3U2Cqen4": testVideo()},
		channelErrs: true,
	}
	p := NewParser(api, &fakeTranscripts{}, Options{})

	results, err := p.ParseBatch(context.Background(), []string{"https://youtu.be/uTc3U2Cqen4"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Error)
	assert.Equal(t, int64(0), results[0].ChannelSubscribers)
}

func TestAttachTranscriptNoRetryOnPermanentError(t *testing.T) {
	api := &fakeAPI{videos: map[string]youtube.Video{"uTc3U2Cqen4": testVideo()}}
	transcripts := &fakeTranscripts{} // empty map: every fetch is ErrNoTranscript
	p := NewParser(api, transcripts, Options{MaxAttempts: 3, BackoffBase: time.Millisecond})

	results, err := p.ParseBatch(context.Background(), []string{"https://youtu.be/uTc3U2Cqen4"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].HasTranscript)
	assert.Contains(t, results[0].TranscriptError, "no transcript")
	assert.Equal(t, 1, transcripts.calls)
}

func TestAttachTranscriptRetriesTransientErrors(t *testing.T) {
	api := &fakeAPI{videos: map[string]youtube.Video{"uTc3U2Cqen4": testVideo()}}
	transcripts := &fakeTranscripts{err: assert.AnError}
	p := NewParser(api, transcripts, Options{MaxAttempts: 3, BackoffBase: time.Millisecond})

	results, err := p.ParseBatch(context.Background(), []string{"https://youtu.be/uTc3U2Cqen4"})
	require.NoError(t, err)
	assert.Equal(t, 3, transcripts.calls)
	assert.NotEmpty(t, results[0].TranscriptError)
}
