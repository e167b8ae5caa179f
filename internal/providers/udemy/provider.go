package udemy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"course-discovery/internal/domain"
	"course-discovery/internal/normalize"
	"course-discovery/internal/providers"
)

// subscriberCeiling anchors the log-normalization of enrollment counts.
// A million enrollments maps to popularity 1.0.
const subscriberCeiling = 1e6

// Provider adapts the Udemy client into the providers.Provider interface.
type Provider struct {
	C        *Client
	PageSize int
}

func (p Provider) Name() string { return string(domain.ProviderUdemy) }

func (p Provider) Fetch(ctx context.Context, q providers.Query) ([]domain.Course, error) {
	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	// Udemy takes marketplace category titles, not our canonical slugs.
	category := strings.ReplaceAll(strings.TrimSpace(q.Category), "-", " ")

	courses, err := p.C.SearchCourses(ctx, strings.TrimSpace(q.Text), category, pageSize)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Course, 0, len(courses))
	for _, c := range courses {
		price := 0.0
		if c.IsPaid {
			price = c.PriceDetail.Amount
		}

		course := domain.Course{
			ID:          fmt.Sprintf("udemy:%d", c.ID),
			Title:       c.Title,
			Description: c.Headline,
			Provider:    domain.ProviderUdemy,
			Category:    normalize.Category(firstNonEmpty(c.PrimaryCategory.Title, q.Category)),
			Level:       normalize.LevelFrom(c.InstructionalLevel),
			Price:       price,
			Popularity:  normalize.LogScale(float64(c.NumSubscribers), subscriberCeiling),
			URL:         absolutizeURL(c.URL),
		}
		if c.AvgRating > 0 {
			rating := c.AvgRating
			course.Rating = &rating
		}
		if mins, ok := ParseContentMinutes(c.ContentInfo); ok {
			course.DurationMinutes = &mins
		}
		if ts, err := time.Parse(time.RFC3339, c.PublishedTime); err == nil {
			course.PublishedAt = ts
		}
		out = append(out, course)
	}
	return out, nil
}

func absolutizeURL(in string) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return ""
	}
	if strings.HasPrefix(in, "http://") || strings.HasPrefix(in, "https://") {
		return in
	}
	if strings.HasPrefix(in, "/") {
		return "https://www.udemy.com" + in
	}
	return "https://www.udemy.com/" + in
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}
