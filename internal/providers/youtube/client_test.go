package youtube

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"course-discovery/internal/domain"
	"course-discovery/internal/providers"
)

type mockRoundTripper struct {
	responses []*http.Response
	errors    []error
	requests  []*http.Request
	index     int
	mux       sync.Mutex
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mux.Lock()
	defer m.mux.Unlock()

	m.requests = append(m.requests, req)
	if m.index >= len(m.responses) {
		return nil, errors.New("no more responses")
	}
	resp := m.responses[m.index]
	err := m.errors[m.index]
	m.index++
	return resp, err
}

func newMockResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{},
	}
}

func newTestClient(rt *mockRoundTripper) *Client {
	c := New("https://youtube.test/v3", "test-key", time.Microsecond)
	c.HTTP = &http.Client{Transport: rt}
	return c
}

const searchBody = `{
  "items": [
    {"id": {"videoId": "vid1"}},
    {"id": {"videoId": "vid2"}},
    {"id": {"kind": "playlist"}}
  ]
}`

const videosBody = `{
  "items": [
    {
      "id": "vid1",
      "snippet": {
        "title": "Go Tutorial for Beginners",
        "description": "Learn Go from scratch",
        "publishedAt": "2024-03-01T00:00:00Z"
      },
      "contentDetails": {"duration": "PT1H30M"},
      "statistics": {"viewCount": "1500000", "likeCount": "32000"}
    },
    {
      "id": "vid2",
      "snippet": {
        "title": "Advanced Go Concurrency",
        "description": "",
        "publishedAt": "bad-timestamp"
      },
      "contentDetails": {"duration": "P0D"},
      "statistics": {"viewCount": "not-a-number"}
    }
  ]
}`

func TestFetchMapsVideos(t *testing.T) {
	rt := &mockRoundTripper{
		responses: []*http.Response{newMockResponse(200, searchBody), newMockResponse(200, videosBody)},
		errors:    []error{nil, nil},
	}
	p := Provider{C: newTestClient(rt)}

	out, err := p.Fetch(context.Background(), providers.Query{Text: "go tutorial", Category: "webdev"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("Expected 2 courses, got %d", len(out))
	}

	first := out[0]
	if first.ID != "youtube:vid1" {
		t.Errorf("Expected id youtube:vid1, got %s", first.ID)
	}
	if first.Provider != domain.ProviderYouTube {
		t.Errorf("Expected provider youtube, got %s", first.Provider)
	}
	if !first.IsFree() {
		t.Errorf("Expected video content to be free")
	}
	if first.Rating != nil {
		t.Errorf("Expected nil rating for video content, got %v", *first.Rating)
	}
	if first.Category != "web-development" {
		t.Errorf("Expected canonical category web-development, got %s", first.Category)
	}
	if first.Level != domain.LevelBeginner {
		t.Errorf("Expected beginner level from title, got %s", first.Level)
	}
	if first.DurationMinutes == nil || *first.DurationMinutes != 90 {
		t.Errorf("Expected 90 minutes, got %v", first.DurationMinutes)
	}
	if first.Popularity <= 0 || first.Popularity >= 1 {
		t.Errorf("Expected normalized popularity in (0,1), got %f", first.Popularity)
	}
	if first.URL != "https://www.youtube.com/watch?v=vid1" {
		t.Errorf("Unexpected URL %s", first.URL)
	}

	// Unparseable fields degrade to null/zero, not errors.
	second := out[1]
	if second.DurationMinutes != nil {
		t.Errorf("Expected unknown duration to stay nil, got %v", *second.DurationMinutes)
	}
	if !second.PublishedAt.IsZero() {
		t.Errorf("Expected bad timestamp to stay zero, got %v", second.PublishedAt)
	}
	if second.Popularity != 0 {
		t.Errorf("Expected unparseable view count to score 0, got %f", second.Popularity)
	}
	if second.Level != domain.LevelAdvanced {
		t.Errorf("Expected advanced level from title, got %s", second.Level)
	}
}

func TestFetchTrendingDefault(t *testing.T) {
	rt := &mockRoundTripper{
		responses: []*http.Response{newMockResponse(200, `{"items": []}`)},
		errors:    []error{nil},
	}
	p := Provider{C: newTestClient(rt)}

	out, err := p.Fetch(context.Background(), providers.Query{})
	if err != nil {
		t.Fatalf("Expected no error on empty result, got %v", err)
	}
	if len(out) != 0 {
		t.Errorf("Expected empty result, got %d", len(out))
	}

	// The provider default orders by view count over the last week.
	q := rt.requests[0].URL.Query()
	if q.Get("order") != "viewCount" {
		t.Errorf("Expected trending default order=viewCount, got %q", q.Get("order"))
	}
	if q.Get("publishedAfter") == "" {
		t.Errorf("Expected trending default to set publishedAfter")
	}
}

func TestFetchPropagatesProviderFailure(t *testing.T) {
	rt := &mockRoundTripper{
		responses: []*http.Response{newMockResponse(403, `{"error": "quota exceeded"}`)},
		errors:    []error{nil},
	}
	p := Provider{C: newTestClient(rt)}

	if _, err := p.Fetch(context.Background(), providers.Query{Text: "go"}); err == nil {
		t.Fatalf("Expected error on non-2xx so the facade can count the provider as failed")
	}
}

func TestParseDurationMinutes(t *testing.T) {
	cases := []struct {
		iso  string
		want int
		ok   bool
	}{
		{"PT1H30M", 90, true},
		{"PT45M", 45, true},
		{"PT59S", 1, true},
		{"PT2H", 120, true},
		{"PT1H2M3S", 63, true},
		{"P0D", 0, false},
		{"garbage", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseDurationMinutes(c.iso)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseDurationMinutes(%q) = (%d, %v), want (%d, %v)", c.iso, got, ok, c.want, c.ok)
		}
	}
}
