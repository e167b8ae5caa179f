package udemy

import (
	"regexp"
	"strconv"
)

/* -------- Response shapes (affiliate courses API) -------- */

type ListCoursesResponse struct {
	Count   int      `json:"count"`
	Results []Course `json:"results"`
}

type Course struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Headline    string `json:"headline"`
	URL         string `json:"url"`
	IsPaid      bool   `json:"is_paid"`
	PriceDetail struct {
		Amount float64 `json:"amount"`
	} `json:"price_detail"`
	AvgRating          float64 `json:"avg_rating"`
	NumSubscribers     int64   `json:"num_subscribers"`
	NumReviews         int64   `json:"num_reviews"`
	InstructionalLevel string  `json:"instructional_level"`
	// e.g. "4.5 total hours" or "32 total mins"
	ContentInfo     string `json:"content_info"`
	PublishedTime   string `json:"published_time"`
	Image480x270    string `json:"image_480x270"`
	PrimaryCategory struct {
		Title string `json:"title"`
	} `json:"primary_category"`
}

var contentInfo = regexp.MustCompile(`^([\d.]+) total (hours?|mins?)$`)

// ParseContentMinutes converts Udemy's human-readable content_info into
// whole minutes. Returns false when the shape is unrecognized.
func ParseContentMinutes(info string) (int, bool) {
	m := contentInfo.FindStringSubmatch(info)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil || n < 0 {
		return 0, false
	}
	if m[2] == "hours" || m[2] == "hour" {
		return int(n * 60), true
	}
	return int(n), true
}
