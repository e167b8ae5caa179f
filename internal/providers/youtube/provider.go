package youtube

import (
	"context"
	"strconv"
	"strings"
	"time"

	"course-discovery/internal/domain"
	"course-discovery/internal/normalize"
	"course-discovery/internal/providers"
)

// viewCeiling anchors the log-normalization of view counts. A billion views
// maps to popularity 1.0.
const viewCeiling = 1e9

// Provider adapts the YouTube client into the providers.Provider interface.
// Video content is always free and has no rating concept.
type Provider struct {
	C          *Client
	MaxResults int
}

func (p Provider) Name() string { return string(domain.ProviderYouTube) }

func (p Provider) Fetch(ctx context.Context, q providers.Query) ([]domain.Course, error) {
	maxResults := p.MaxResults
	if maxResults <= 0 {
		maxResults = 25
	}

	term := strings.TrimSpace(q.Text)
	order := ""
	var publishedAfter time.Time

	if term == "" && q.Category != "" {
		term = strings.ReplaceAll(q.Category, "-", " ") + " course"
	}
	if term == "" {
		// Provider-defined default: trending course uploads this week.
		term = "online course"
		order = "viewCount"
		publishedAfter = time.Now().AddDate(0, 0, -7)
	}

	ids, err := p.C.Search(ctx, term, order, maxResults, publishedAfter)
	if err != nil {
		return nil, err
	}

	videos, err := p.C.Videos(ctx, ids)
	if err != nil {
		return nil, err
	}

	category := normalize.Category(q.Category)

	out := make([]domain.Course, 0, len(videos))
	for _, v := range videos {
		course := domain.Course{
			ID:          "youtube:" + v.ID,
			Title:       v.Snippet.Title,
			Description: v.Snippet.Description,
			Provider:    domain.ProviderYouTube,
			Category:    category,
			Level:       normalize.LevelFrom(v.Snippet.Title),
			Price:       0,
			Rating:      nil, // views/likes are not ratings
			Popularity:  normalize.LogScale(parseCount(v.Statistics.ViewCount), viewCeiling),
			URL:         "https://www.youtube.com/watch?v=" + v.ID,
		}
		if mins, ok := ParseDurationMinutes(v.ContentDetails.Duration); ok {
			course.DurationMinutes = &mins
		}
		if ts, err := time.Parse(time.RFC3339, v.Snippet.PublishedAt); err == nil {
			course.PublishedAt = ts
		}
		out = append(out, course)
	}
	return out, nil
}

func parseCount(s string) float64 {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return float64(n)
}
