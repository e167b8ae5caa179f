package udemy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"course-discovery/internal/httpx"
)

// courseFields trims the response down to what the canonical schema needs.
const courseFields = "@default,headline,is_paid,price_detail,avg_rating,num_subscribers,num_reviews,instructional_level,content_info,published_time,image_480x270,primary_category"

// Client talks to the Udemy affiliate courses API using client-id/secret
// basic auth. The limiter keeps request spacing inside Udemy's rate limits.
type Client struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	HTTP         *http.Client

	limiter *rate.Limiter
}

// New builds a client. spacing is the minimum interval between requests.
func New(baseURL, clientID, clientSecret string, spacing time.Duration) *Client {
	if spacing <= 0 {
		spacing = 200 * time.Millisecond
	}
	return &Client{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(spacing), 1),
	}
}

// SearchCourses runs one page of course search. search and category are
// both optional; with neither set Udemy returns its popularity-ordered
// catalog slice, which is exactly the trending default we want.
func (c *Client) SearchCourses(ctx context.Context, search, category string, pageSize int) ([]Course, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("page", "1")
	q.Set("page_size", fmt.Sprintf("%d", pageSize))
	q.Set("fields[course]", courseFields)
	q.Set("ordering", "relevance")
	if search != "" {
		q.Set("search", search)
	}
	if category != "" {
		q.Set("category", category)
	}
	if search == "" {
		q.Set("ordering", "most-reviewed")
	}

	var out ListCoursesResponse
	err := httpx.DoJSON(ctx, c.HTTP, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/courses/?"+q.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("udemy: build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Accept-Encoding", httpx.AcceptEncoding)
		req.SetBasicAuth(c.ClientID, c.ClientSecret)
		return req, nil
	}, &out, httpx.DefaultRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("udemy search failed: %w", err)
	}

	return out.Results, nil
}
