package urlclass

import (
	"regexp"
	"strconv"
)

// videoIDPatterns covers every known YouTube URL shape. IDs are always
// exactly 11 characters.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?.*v=([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/live/([A-Za-z0-9_-]{11})`),
}

// reTimestampParam matches a t= query parameter in either the bare-integer
// or the "<int>s" form, whether or not it is the first parameter.
var reTimestampParam = regexp.MustCompile(`[?&]t=(\d+)s?(?:&|$)`)

// ExtractVideoID pulls the 11-character video ID out of a YouTube URL.
// Returns ("", false) when no known URL shape matches.
func ExtractVideoID(url string) (string, bool) {
	for _, pattern := range videoIDPatterns {
		if m := pattern.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ExtractTimestamp reads the integration timestamp hint from a YouTube
// URL's t= query parameter, in seconds. Returns nil when the parameter is
// absent or malformed. Downstream enrichment uses this to localize the ad
// segment within a transcript.
func ExtractTimestamp(url string) *int {
	m := reTimestampParam.FindStringSubmatch(url)
	if m == nil {
		return nil
	}
	sec, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &sec
}
