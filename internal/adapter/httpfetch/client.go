// Package httpfetch retrieves text documents over HTTP with bounded retries.
package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/net/html/charset"

	"github.com/couchcryptid/snowtam-watch/internal/observability"
)

// maxBodyBytes caps a response body. The reference airport CSV is the largest
// document fetched, at roughly 12 MB.
const maxBodyBytes = 64 << 20

// StatusError reports a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}

// Options configures a Client.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// Retries is the total number of attempts, at least 1.
	Retries int
	// Backoff is the linear backoff base: attempt n waits Backoff*n before retrying.
	Backoff time.Duration
}

// Client fetches documents and decodes them to UTF-8 text.
type Client struct {
	httpClient *http.Client
	userAgent  string
	retries    int
	backoff    time.Duration
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a fetch client.
func NewClient(opts Options, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		userAgent:  opts.UserAgent,
		retries:    max(opts.Retries, 1),
		backoff:    opts.Backoff,
		clock:      clockwork.NewRealClock(),
		metrics:    metrics,
		logger:     logger,
	}
}

// Get fetches url and returns its body as UTF-8 text. Failed attempts are
// retried with linear backoff; the last error is returned once attempts run out.
func (c *Client) Get(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		body, err := c.fetch(ctx, url)
		if err == nil {
			c.metrics.FetchAttempts.WithLabelValues("success").Inc()
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}

		if attempt == c.retries {
			break
		}
		c.metrics.FetchAttempts.WithLabelValues("retry").Inc()
		c.logger.Debug("fetch attempt failed, retrying", "url", url, "attempt", attempt, "error", err)
		if !c.sleep(ctx, c.backoff*time.Duration(attempt)) {
			break
		}
	}
	c.metrics.FetchAttempts.WithLabelValues("error").Inc()
	return "", lastErr
}

func (c *Client) fetch(ctx context.Context, url string) (string, error) {
	start := c.clock.Now()
	defer func() { c.metrics.FetchDuration.Observe(c.clock.Since(start).Seconds()) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &StatusError{URL: url, Code: resp.StatusCode}
	}

	return decodeBody(resp.Body, resp.Header.Get("Content-Type"))
}

// decodeBody converts the body to UTF-8 using the declared or sniffed charset.
// Bytes that still do not form valid UTF-8 are replaced.
func decodeBody(body io.Reader, contentType string) (string, error) {
	r, err := charset.NewReader(io.LimitReader(body, maxBodyBytes), contentType)
	if err != nil {
		return "", fmt.Errorf("detect charset: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}

func (c *Client) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-c.clock.After(d):
		return true
	}
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
