package youtube

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

// Client talks to the YouTube Data API v3. One instance per process; the
// limiter enforces minimum spacing between requests so a burst of
// aggregation calls doesn't trip the API quota.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client

	limiter *rate.Limiter
}

// New builds a client. spacing is the minimum interval between requests.
func New(baseURL, apiKey string, spacing time.Duration) *Client {
	if spacing <= 0 {
		spacing = 200 * time.Millisecond
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP: &http.Client{
			Timeout: 30 * time.Second, // per-request; callers bound the whole fetch via ctx
		},
		limiter: rate.NewLimiter(rate.Every(spacing), 1),
	}
}

// Search runs a video search and returns the matching video IDs.
// publishedAfter is optional and narrows results to recent uploads
// (the trending default uses the last week).
func (c *Client) Search(ctx context.Context, query, order string, maxResults int, publishedAfter time.Time) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("type", "video")
	q.Set("q", query)
	q.Set("maxResults", fmt.Sprintf("%d", maxResults))
	q.Set("key", c.APIKey)
	if order != "" {
		q.Set("order", order)
	}
	if !publishedAfter.IsZero() {
		q.Set("publishedAfter", publishedAfter.UTC().Format(time.RFC3339))
	}

	var out SearchResponse
	err := httpx.DoJSON(ctx, c.HTTP, c.buildGet("/search", q), &out, httpx.DefaultRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("youtube search failed: %w", err)
	}

	ids := make([]string, 0, len(out.Items))
	for _, it := range out.Items {
		if it.ID.VideoID != "" {
			ids = append(ids, it.ID.VideoID)
		}
	}
	return ids, nil
}

// Videos hydrates search hits with statistics and durations. The search
// endpoint doesn't return view counts, so every fetch is two calls.
func (c *Client) Videos(ctx context.Context, ids []string) ([]Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("part", "snippet,contentDetails,statistics")
	q.Set("id", strings.Join(ids, ","))
	q.Set("key", c.APIKey)

	var out VideosResponse
	err := httpx.DoJSON(ctx, c.HTTP, c.buildGet("/videos", q), &out, httpx.DefaultRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("youtube videos lookup failed: %w", err)
	}
	return out.Items, nil
}

func (c *Client) buildGet(path string, q url.Values) func(context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+q.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("youtube: build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Accept-Encoding", httpx.AcceptEncoding)
		return req, nil
	}
}
