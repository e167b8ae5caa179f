package youtube

import (
	"regexp"
	"strconv"
)

/* -------- Response shapes (Data API v3) -------- */

type SearchResponse struct {
	Items []SearchItem `json:"items"`
}

type SearchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
}

type VideosResponse struct {
	Items []Video `json:"items"`
}

type Video struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		ChannelTitle string `json:"channelTitle"`
		PublishedAt  string `json:"publishedAt"`
	} `json:"snippet"`
	ContentDetails struct {
		// ISO-8601, e.g. "PT1H23M45S"
		Duration string `json:"duration"`
	} `json:"contentDetails"`
	Statistics struct {
		// The API returns counters as strings.
		ViewCount string `json:"viewCount"`
		LikeCount string `json:"likeCount"`
	} `json:"statistics"`
}

var isoDuration = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseDurationMinutes converts an ISO-8601 video duration into whole
// minutes, rounding up partial minutes. Returns false for shapes we don't
// recognize (live streams report "P0D").
func ParseDurationMinutes(iso string) (int, bool) {
	m := isoDuration.FindStringSubmatch(iso)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(zeroIfEmpty(m[1]))
	min, _ := strconv.Atoi(zeroIfEmpty(m[2]))
	s, _ := strconv.Atoi(zeroIfEmpty(m[3]))

	total := h*60 + min
	if s > 0 {
		total++
	}
	return total, true
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
