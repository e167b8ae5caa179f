package httpx

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
)

// Mock HTTP RoundTripper for testing
type mockRoundTripper struct {
	responses []*http.Response
	errors    []error
	index     int
	mux       sync.Mutex
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mux.Lock()
	defer m.mux.Unlock()

	if m.index >= len(m.responses) {
		return nil, errors.New("no more responses")
	}

	resp := m.responses[m.index]
	err := m.errors[m.index]
	m.index++

	if resp != nil && resp.Body != nil {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewBuffer(body))
	}

	return resp, err
}

func newMockClient(responses []*http.Response, errs []error) *http.Client {
	for len(errs) < len(responses) {
		errs = append(errs, nil)
	}
	return &http.Client{
		Transport: &mockRoundTripper{responses: responses, errors: errs},
	}
}

func newMockResponse(statusCode int, body string, headers map[string]string) *http.Response {
	header := http.Header{}
	for k, v := range headers {
		header.Set(k, v)
	}
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     header,
	}
}

func buildGet(url string) func(ctx context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
}

func fastRetry(attempts int) RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.MaxAttempts = attempts
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	return cfg
}

func TestDoWithRetrySuccess(t *testing.T) {
	client := newMockClient(
		[]*http.Response{newMockResponse(200, `{"success": true}`, nil)},
		nil,
	)

	resp, body, err := DoWithRetry(context.Background(), client, buildGet("https://example.com"), DefaultRetryConfig())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if string(body) != `{"success": true}` {
		t.Errorf("Expected body %q, got %q", `{"success": true}`, string(body))
	}
}

func TestRetriesOnceOn429ThenSucceeds(t *testing.T) {
	client := newMockClient(
		[]*http.Response{
			newMockResponse(429, "slow down", map[string]string{"Retry-After": "0"}),
			newMockResponse(200, "ok", nil),
		},
		nil,
	)

	_, body, err := DoWithRetry(context.Background(), client, buildGet("https://example.com"), fastRetry(2))
	if err != nil {
		t.Fatalf("Expected retry to recover, got %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("Expected body 'ok', got %q", string(body))
	}
}

func TestGivesUpAfterMaxAttempts(t *testing.T) {
	client := newMockClient(
		[]*http.Response{
			newMockResponse(503, "down", nil),
			newMockResponse(503, "still down", nil),
			newMockResponse(200, "never reached", nil),
		},
		nil,
	)

	_, _, err := DoWithRetry(context.Background(), client, buildGet("https://example.com"), fastRetry(2))
	if err == nil {
		t.Fatalf("Expected error after exhausting attempts")
	}
	var herr *HTTPError
	if !errors.As(err, &herr) || herr.StatusCode != 503 {
		t.Errorf("Expected HTTPError 503, got %v", err)
	}
}

func TestNoRetryOn4xx(t *testing.T) {
	client := newMockClient(
		[]*http.Response{
			newMockResponse(404, "not found", nil),
			newMockResponse(200, "never reached", nil),
		},
		nil,
	)

	_, _, err := DoWithRetry(context.Background(), client, buildGet("https://example.com"), fastRetry(3))
	var herr *HTTPError
	if !errors.As(err, &herr) || herr.StatusCode != 404 {
		t.Fatalf("Expected immediate HTTPError 404, got %v", err)
	}
}

func TestBrotliBodyDecoded(t *testing.T) {
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write([]byte(`{"compressed": true}`)); err != nil {
		t.Fatal(err)
	}
	w.Close()

	client := newMockClient(
		[]*http.Response{newMockResponse(200, buf.String(), map[string]string{"Content-Encoding": "br"})},
		nil,
	)

	_, body, err := DoWithRetry(context.Background(), client, buildGet("https://example.com"), DefaultRetryConfig())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(body) != `{"compressed": true}` {
		t.Errorf("Expected decoded brotli body, got %q", string(body))
	}
}

func TestGzipBodyDecoded(t *testing.T) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	w.Close()

	client := newMockClient(
		[]*http.Response{newMockResponse(200, buf.String(), map[string]string{"Content-Encoding": "gzip"})},
		nil,
	)

	_, body, err := DoWithRetry(context.Background(), client, buildGet("https://example.com"), DefaultRetryConfig())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(body) != "hello" {
		t.Errorf("Expected decoded gzip body, got %q", string(body))
	}
}

func TestParseRetryAfterSeconds(t *testing.T) {
	resp := newMockResponse(429, "", map[string]string{"Retry-After": "7"})
	if got := ParseRetryAfter(resp); got != 7*time.Second {
		t.Errorf("Expected 7s, got %v", got)
	}

	resp = newMockResponse(429, "", nil)
	if got := ParseRetryAfter(resp); got != 0 {
		t.Errorf("Expected 0 for missing header, got %v", got)
	}

	resp = newMockResponse(429, "", map[string]string{"Retry-After": "garbage"})
	if got := ParseRetryAfter(resp); got != 0 {
		t.Errorf("Expected 0 for garbage header, got %v", got)
	}
}

func TestDoJSON(t *testing.T) {
	client := newMockClient(
		[]*http.Response{newMockResponse(200, `{"count": 3}`, nil)},
		nil,
	)

	var out struct {
		Count int `json:"count"`
	}
	if err := DoJSON(context.Background(), client, buildGet("https://example.com"), &out, DefaultRetryConfig()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out.Count != 3 {
		t.Errorf("Expected count 3, got %d", out.Count)
	}
}

func TestDoJSONParseError(t *testing.T) {
	client := newMockClient(
		[]*http.Response{newMockResponse(200, "<html>cloudflare</html>", nil)},
		nil,
	)

	var out map[string]any
	if err := DoJSON(context.Background(), client, buildGet("https://example.com"), &out, DefaultRetryConfig()); err == nil {
		t.Errorf("Expected parse error for HTML body")
	}
}

func TestContextCancellationStopsRetries(t *testing.T) {
	client := newMockClient(
		[]*http.Response{
			newMockResponse(503, "down", map[string]string{"Retry-After": "30"}),
		},
		nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	cfg := fastRetry(2)
	_, _, err := DoWithRetry(ctx, client, buildGet("https://example.com"), cfg)
	if err == nil {
		t.Fatalf("Expected error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled during backoff, got %v", err)
	}
}
