package youtube

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ErrNoTranscript marks videos with no caption track in any of the
// configured languages. Callers should not retry it.
var ErrNoTranscript = errors.New("youtube: no transcript available")

const defaultTimedtextURL = "https://www.youtube.com/api/timedtext"

// DefaultTranscriptLanguages is the caption language preference order.
var DefaultTranscriptLanguages = []string{"uk", "ru", "en"}

// Transcript is a fetched caption track.
type Transcript struct {
	Language string
	Segments []TranscriptSegment
}

// TranscriptSegment is one timestamped caption span.
type TranscriptSegment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// FullText joins the segment texts with single spaces.
func (t *Transcript) FullText() string {
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " ")
}

// TranscriptClient fetches caption tracks for videos.
type TranscriptClient interface {
	FetchTranscript(ctx context.Context, videoID string) (*Transcript, error)
}

// TranscriptOption configures the timedtext client.
type TranscriptOption func(*timedtextClient)

// WithTimedtextURL overrides the timedtext endpoint.
func WithTimedtextURL(u string) TranscriptOption {
	return func(c *timedtextClient) {
		c.baseURL = u
	}
}

// WithTranscriptLanguages overrides the language preference order.
func WithTranscriptLanguages(langs []string) TranscriptOption {
	return func(c *timedtextClient) {
		if len(langs) > 0 {
			c.languages = langs
		}
	}
}

// WithTranscriptHTTPClient overrides the default http.Client.
func WithTranscriptHTTPClient(hc *http.Client) TranscriptOption {
	return func(c *timedtextClient) {
		c.http = hc
	}
}

type timedtextClient struct {
	baseURL   string
	languages []string
	http      *http.Client
}

// NewTranscriptClient creates a caption fetcher backed by the public
// timedtext endpoint.
func NewTranscriptClient(opts ...TranscriptOption) TranscriptClient {
	c := &timedtextClient{
		baseURL:   defaultTimedtextURL,
		languages: DefaultTranscriptLanguages,
		http:      &http.Client{Timeout: 20 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type trackList struct {
	Tracks []struct {
		LangCode string `xml:"lang_code,attr"`
	} `xml:"track"`
}

type captionDoc struct {
	Texts []struct {
		Start    float64 `xml:"start,attr"`
		Duration float64 `xml:"dur,attr"`
		Body     string  `xml:",chardata"`
	} `xml:"text"`
}

// FetchTranscript lists the available caption tracks and downloads the
// first one matching the language preference order. Returns
// ErrNoTranscript when no preferred track exists.
func (c *timedtextClient) FetchTranscript(ctx context.Context, videoID string) (*Transcript, error) {
	available, err := c.listTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}

	lang := ""
	for _, preferred := range c.languages {
		if available[preferred] {
			lang = preferred
			break
		}
	}
	if lang == "" {
		return nil, ErrNoTranscript
	}

	q := url.Values{}
	q.Set("v", videoID)
	q.Set("lang", lang)

	body, err := c.get(ctx, q)
	if err != nil {
		return nil, err
	}

	var doc captionDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, eris.Wrap(err, "youtube: decode captions")
	}

	segments := make([]TranscriptSegment, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		text := strings.TrimSpace(t.Body)
		if text == "" {
			continue
		}
		segments = append(segments, TranscriptSegment{Text: text, Start: t.Start, Duration: t.Duration})
	}
	if len(segments) == 0 {
		return nil, ErrNoTranscript
	}
	return &Transcript{Language: lang, Segments: segments}, nil
}

func (c *timedtextClient) listTracks(ctx context.Context, videoID string) (map[string]bool, error) {
	q := url.Values{}
	q.Set("v", videoID)
	q.Set("type", "list")

	body, err := c.get(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, ErrNoTranscript
	}

	var list trackList
	if err := xml.Unmarshal(body, &list); err != nil {
		return nil, eris.Wrap(err, "youtube: decode track list")
	}

	available := make(map[string]bool, len(list.Tracks))
	for _, track := range list.Tracks {
		available[track.LangCode] = true
	}
	return available, nil
}

func (c *timedtextClient) get(ctx context.Context, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "youtube: create timedtext request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "youtube: send timedtext request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoTranscript
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("youtube: timedtext status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
