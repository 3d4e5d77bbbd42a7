// Package birdcast fetches migration dashboard pages over HTTP.
package birdcast

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/davidjcox/birdcast-collector/internal/domain"
)

// Options configures the dashboard HTTP client.
type Options struct {
	// UserAgent is sent on every request. The dashboard serves a stripped
	// page to clients without a browser identity.
	UserAgent string

	// Timeout bounds a single attempt, including body read.
	Timeout time.Duration

	// Retries is the number of re-attempts after the first failure.
	Retries      int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
}

// Client fetches dashboard pages. One Client is scoped to one batch
// invocation; it owns the underlying HTTP session.
type Client struct {
	http     *resty.Client
	attempts int
	logger   *slog.Logger
}

// NewClient creates a dashboard client with retry and backoff behavior.
// Transient failures (network errors, timeouts, non-2xx statuses) are
// retried up to opts.Retries times with backoff between attempts.
func NewClient(opts Options, logger *slog.Logger) *Client {
	rc := resty.New().
		SetHeader("User-Agent", opts.UserAgent).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(opts.RetryMaxWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.IsError()
		})

	return &Client{
		http:     rc,
		attempts: opts.Retries + 1,
		logger:   logger,
	}
}

// Fetch performs an HTTP GET against the target URL and returns the page
// body. All failure modes, including retry exhaustion and responses that
// cannot possibly be the dashboard, surface as *domain.FetchError.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	c.logger.Debug("fetching dashboard page", "url", url)

	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", &domain.FetchError{URL: url, Attempts: c.attempts, Err: err}
	}
	if resp.IsError() {
		return "", &domain.FetchError{
			URL:      url,
			Attempts: c.attempts,
			Err:      fmt.Errorf("status %d %s", resp.StatusCode(), http.StatusText(resp.StatusCode())),
		}
	}

	if ct := strings.ToLower(resp.Header().Get("Content-Type")); !strings.Contains(ct, "text/html") {
		return "", &domain.FetchError{
			URL:      url,
			Attempts: c.attempts,
			Err:      fmt.Errorf("unexpected content type %q", ct),
		}
	}

	body := string(resp.Body())
	if looksLikeCSS(body) {
		return "", &domain.FetchError{
			URL:      url,
			Attempts: c.attempts,
			Err:      fmt.Errorf("received CSS instead of HTML, URL may be wrong"),
		}
	}

	return body, nil
}

// looksLikeCSS detects the dashboard's stylesheet being served in place of
// the page, which happens when the region path is mistyped.
func looksLikeCSS(body string) bool {
	head := strings.TrimSpace(body)
	if len(head) > 100 {
		head = head[:100]
	}
	return strings.HasPrefix(head, "@keyframes") || strings.Contains(strings.ToLower(head), "css")
}
