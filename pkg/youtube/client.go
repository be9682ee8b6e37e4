package youtube

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://www.googleapis.com/youtube/v3"

	// Data API quota friendliness: videos.list and channels.list accept
	// up to 50 IDs per call.
	MaxIDsPerCall = 50

	defaultMaxAttempts = 3
	defaultBackoffBase = 2 * time.Second
)

// Client wraps the YouTube Data API v3 endpoints the pipeline needs.
type Client interface {
	ListVideos(ctx context.Context, ids []string) ([]Video, error)
	ListChannels(ctx context.Context, ids []string) (map[string]ChannelStats, error)
}

// Video is the parsed subset of a videos.list item.
type Video struct {
	ID              string
	Title           string
	Description     string
	ChannelID       string
	ChannelName     string
	PublishDate     string
	ViewCount       int64
	LikeCount       int64
	CommentCount    int64
	DurationISO     string
	DurationSeconds int
	Tags            []string
	ThumbnailURL    string
	CategoryID      string
}

// ChannelStats is the parsed subset of a channels.list item.
// Subscribers is -1 when the channel hides its subscriber count.
type ChannelStats struct {
	ID          string
	Subscribers int64
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithLimiter overrides the default request rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *httpClient) {
		c.limiter = l
	}
}

// WithMaxAttempts overrides the retry budget per request.
func WithMaxAttempts(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBackoffBase overrides the exponential backoff base delay.
func WithBackoffBase(d time.Duration) Option {
	return func(c *httpClient) {
		c.backoffBase = d
	}
}

type httpClient struct {
	apiKey      string
	baseURL     string
	http        *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	backoffBase time.Duration
}

// NewClient creates a YouTube Data API v3 client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter:     rate.NewLimiter(rate.Limit(5), 5),
		maxAttempts: defaultMaxAttempts,
		backoffBase: defaultBackoffBase,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) ListVideos(ctx context.Context, ids []string) ([]Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxIDsPerCall {
		return nil, eris.Errorf("youtube: %d ids exceeds the %d per-call limit", len(ids), MaxIDsPerCall)
	}

	q := url.Values{}
	q.Set("part", "snippet,statistics,contentDetails")
	q.Set("id", strings.Join(ids, ","))

	var resp videoListResponse
	if err := c.get(ctx, "/videos", q, &resp); err != nil {
		return nil, err
	}

	videos := make([]Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		videos = append(videos, parseVideoItem(item))
	}
	return videos, nil
}

func (c *httpClient) ListChannels(ctx context.Context, ids []string) (map[string]ChannelStats, error) {
	if len(ids) == 0 {
		return map[string]ChannelStats{}, nil
	}
	if len(ids) > MaxIDsPerCall {
		return nil, eris.Errorf("youtube: %d ids exceeds the %d per-call limit", len(ids), MaxIDsPerCall)
	}

	q := url.Values{}
	q.Set("part", "statistics")
	q.Set("id", strings.Join(ids, ","))

	var resp channelListResponse
	if err := c.get(ctx, "/channels", q, &resp); err != nil {
		return nil, err
	}

	stats := make(map[string]ChannelStats, len(resp.Items))
	for _, item := range resp.Items {
		s := ChannelStats{ID: item.ID, Subscribers: item.Statistics.SubscriberCount.value()}
		if item.Statistics.HiddenSubscriberCount {
			s.Subscribers = -1
		}
		stats[item.ID] = s
	}
	return stats, nil
}

// get performs a rate-limited GET with retries on 429 and 5xx responses.
func (c *httpClient) get(ctx context.Context, path string, q url.Values, out any) error {
	q.Set("key", c.apiKey)
	fullURL := c.baseURL + path + "?" + q.Encode()

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "youtube: rate limiter")
		}

		body, status, err := c.do(ctx, fullURL)
		if err != nil {
			lastErr = err
		} else if status == http.StatusOK {
			if err := json.Unmarshal(body, out); err != nil {
				return eris.Wrap(err, "youtube: unmarshal response")
			}
			return nil
		} else if status == http.StatusTooManyRequests || status >= 500 {
			lastErr = eris.Errorf("youtube: unexpected status %d: %s", status, truncate(string(body), 200))
		} else {
			return eris.Errorf("youtube: unexpected status %d: %s", status, truncate(string(body), 200))
		}

		if attempt < c.maxAttempts {
			wait := c.backoffBase * (1 << (attempt - 1))
			zap.L().Warn("youtube API call failed, retrying",
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return eris.Wrap(ctx.Err(), "youtube: retry wait")
			case <-time.After(wait):
			}
		}
	}
	return eris.Wrapf(lastErr, "youtube: request failed after %d attempts", c.maxAttempts)
}

func (c *httpClient) do(ctx context.Context, fullURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, eris.Wrap(err, "youtube: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, eris.Wrap(err, "youtube: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, eris.Wrap(err, "youtube: read response")
	}
	return body, resp.StatusCode, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
