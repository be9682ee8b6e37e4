package youtube

import "strconv"

// The Data API encodes every count as a JSON string.
type countString string

func (c countString) value() int64 {
	n, err := strconv.ParseInt(string(c), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

type videoListResponse struct {
	Items []videoItem `json:"items"`
}

type videoItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string     `json:"title"`
		Description  string     `json:"description"`
		ChannelID    string     `json:"channelId"`
		ChannelTitle string     `json:"channelTitle"`
		PublishedAt  string     `json:"publishedAt"`
		Tags         []string   `json:"tags"`
		CategoryID   string     `json:"categoryId"`
		Thumbnails   thumbnails `json:"thumbnails"`
	} `json:"snippet"`
	Statistics struct {
		ViewCount    countString `json:"viewCount"`
		LikeCount    countString `json:"likeCount"`
		CommentCount countString `json:"commentCount"`
	} `json:"statistics"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
}

type thumbnails struct {
	Maxres  thumbnail `json:"maxres"`
	High    thumbnail `json:"high"`
	Medium  thumbnail `json:"medium"`
	Default thumbnail `json:"default"`
}

type thumbnail struct {
	URL string `json:"url"`
}

// best returns the largest available thumbnail URL.
func (t thumbnails) best() string {
	for _, u := range []string{t.Maxres.URL, t.High.URL, t.Medium.URL, t.Default.URL} {
		if u != "" {
			return u
		}
	}
	return ""
}

type channelListResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			SubscriberCount       countString `json:"subscriberCount"`
			HiddenSubscriberCount bool        `json:"hiddenSubscriberCount"`
		} `json:"statistics"`
	} `json:"items"`
}

func parseVideoItem(item videoItem) Video {
	seconds, err := ParseISODuration(item.ContentDetails.Duration)
	if err != nil {
		seconds = 0
	}
	return Video{
		ID:              item.ID,
		Title:           item.Snippet.Title,
		Description:     item.Snippet.Description,
		ChannelID:       item.Snippet.ChannelID,
		ChannelName:     item.Snippet.ChannelTitle,
		PublishDate:     item.Snippet.PublishedAt,
		ViewCount:       item.Statistics.ViewCount.value(),
		LikeCount:       item.Statistics.LikeCount.value(),
		CommentCount:    item.Statistics.CommentCount.value(),
		DurationISO:     item.ContentDetails.Duration,
		DurationSeconds: seconds,
		Tags:            item.Snippet.Tags,
		ThumbnailURL:    item.Snippet.Thumbnails.best(),
		CategoryID:      item.Snippet.CategoryID,
	}
}
