package api

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/time/rate"
)

const userAgent = "scottish-predictor/1.0 (+stats updater)"

// StatusError is returned for a final non-200 response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// RateLimitedClient wraps http.Client with rate limiting and retries
type RateLimitedClient struct {
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

// NewRateLimitedClient creates a client limited to requestsPerMinute, with a
// burst of ten seconds' worth of requests.
func NewRateLimitedClient(requestsPerMinute int, timeout time.Duration, maxRetries int) *RateLimitedClient {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1
	}
	return &RateLimitedClient{
		client: &http.Client{
			Timeout: timeout,
		},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), max(1, requestsPerMinute/6)),
		maxRetries: maxRetries,
		backoff:    100 * time.Millisecond,
	}
}

// Do executes an HTTP request with rate limiting and retries. Network
// errors, 429 and 5xx responses are retried with exponential backoff; the
// request must have no body or a GetBody func.
func (c *RateLimitedClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		resp, err := c.client.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if err := sleep(ctx, c.backoff<<attempt); err != nil {
				return nil, err
			}
			continue
		}

		// Handle rate limit responses (429)
		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			lastErr = fmt.Errorf("rate limited (429)")
			slog.Warn("Rate limited, backing off", "url", req.URL.String(), "attempt", attempt+1)
			if err := sleep(ctx, 10*c.backoff<<attempt); err != nil {
				return nil, err
			}
			continue
		}

		// Handle server errors with retry
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			if err := sleep(ctx, c.backoff<<attempt); err != nil {
				return nil, err
			}
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// Get performs a rate-limited GET request and returns the decoded body.
func (c *RateLimitedClient) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Encoding", "gzip, br")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(snippet)}
	}

	return io.ReadAll(body)
}

// decodeBody unwraps the response according to its Content-Encoding.
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "", "identity":
		return io.NopCloser(resp.Body), nil
	case "gzip":
		r, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		return r, nil
	case "br":
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", resp.Header.Get("Content-Encoding"))
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
