// Package urlclass determines platform, parseability, and content ID for
// arbitrary ad-link strings.
package urlclass

import (
	"regexp"
	"strings"

	"github.com/influmetrics/integrations-cli/internal/model"
)

var (
	reInstagramReel  = regexp.MustCompile(`instagram\.com/reel/([A-Za-z0-9_-]+)`)
	reInstagramPost  = regexp.MustCompile(`instagram\.com/p/([A-Za-z0-9_-]+)`)
	reTikTokVideo    = regexp.MustCompile(`tiktok\.com/.*/video/(\d+)`)
	reLocalVideoFile = regexp.MustCompile(`(?i)\.(mp4|mov|avi|mkv)$`)
)

// Classify inspects an ad-link string and reports whether its content can
// be fetched from a platform API, which platform it belongs to, and the
// platform-specific content ID if one can be extracted.
//
// Checks run in strict priority order: the YouTube substring check comes
// before the Instagram and TikTok patterns, and the file-extension /
// non-http fallbacks come last because they are the weakest signals.
func Classify(rawURL string) model.Classification {
	url := strings.TrimSpace(rawURL)
	if url == "" || strings.EqualFold(url, "nan") {
		return model.Classification{URLType: model.URLTypeEmpty}
	}

	if strings.Contains(url, "youtu") {
		id, ok := ExtractVideoID(url)
		return model.Classification{
			IsParseable: ok,
			URLType:     model.URLTypeYouTube,
			ContentID:   id,
		}
	}

	if m := reInstagramReel.FindStringSubmatch(url); m != nil {
		return model.Classification{
			IsParseable: true,
			URLType:     model.URLTypeInstagramReel,
			ContentID:   m[1],
		}
	}

	if m := reInstagramPost.FindStringSubmatch(url); m != nil {
		return model.Classification{
			IsParseable: true,
			URLType:     model.URLTypeInstagramPost,
			ContentID:   m[1],
		}
	}

	if strings.Contains(url, "instagram.com") {
		// Stories expire and profile pages have no single content item;
		// neither is fetchable.
		if strings.Contains(url, "instagram.com/stories/") {
			return model.Classification{URLType: model.URLTypeInstagramStory}
		}
		return model.Classification{URLType: model.URLTypeInstagramOther}
	}

	if m := reTikTokVideo.FindStringSubmatch(url); m != nil {
		return model.Classification{
			IsParseable: true,
			URLType:     model.URLTypeTikTok,
			ContentID:   m[1],
		}
	}

	if strings.Contains(url, "drive.google.com") {
		return model.Classification{URLType: model.URLTypeDriveLink}
	}

	if reLocalVideoFile.MatchString(url) {
		return model.Classification{URLType: model.URLTypeLocalFile}
	}

	// No scheme means a bare local filename.
	if !strings.HasPrefix(url, "http") {
		return model.Classification{URLType: model.URLTypeLocalFile}
	}

	return model.Classification{URLType: model.URLTypeOther}
}
