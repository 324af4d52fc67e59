package showdown

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

const (
	// Public replay search endpoint
	defaultSearchURL = "https://replay.pokemonshowdown.com/search.json"

	// Defaults match the documented operator-tunable values
	defaultTimeout     = 10 * time.Second
	defaultMaxRetries  = 3
	defaultBackoffCap  = 5 * time.Second
	defaultMinInterval = 1 * time.Second

	// Wait when the index rate-limits us without a Retry-After header
	defaultRetryAfter = 10 * time.Second
)

// errTransient marks failures worth another attempt (network faults,
// 5xx responses, truncated bodies).
var errTransient = errors.New("transient index failure")

// Client is a paced replay search client. The index publishes no rate
// limit, so the client keeps a minimum interval between requests and
// honors Retry-After on 429 responses.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	maxRetries  int
	backoffCap  time.Duration
	minInterval time.Duration

	mu          sync.Mutex
	lastRequest time.Time
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL sets a custom search endpoint (useful for testing)
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithMaxRetries sets how many attempts a page fetch gets before the
// error is surfaced
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoffCap caps the exponential delay between attempts
func WithBackoffCap(d time.Duration) Option {
	return func(c *Client) {
		c.backoffCap = d
	}
}

// WithMinInterval sets the politeness gap between requests.
// Zero disables pacing.
func WithMinInterval(d time.Duration) Option {
	return func(c *Client) {
		c.minInterval = d
	}
}

// NewClient creates a search client with the given options
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultSearchURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		maxRetries:  defaultMaxRetries,
		backoffCap:  defaultBackoffCap,
		minInterval: defaultMinInterval,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// retryAfterError signals a 429 with the wait the index asked for
type retryAfterError struct {
	wait time.Duration
}

func (e *retryAfterError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.wait)
}

// SearchPage fetches one page of replay listings for a format,
// newest-first, strictly older than the `before` cursor. A cursor of 0
// means most recent. Transient failures are retried with exponential
// backoff up to the configured attempt budget.
func (c *Client) SearchPage(ctx context.Context, format string, before int64) ([]ReplayRef, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.pace(ctx); err != nil {
			return nil, err
		}

		page, err := c.searchOnce(ctx, format, before)
		if err == nil {
			return page, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err

		if attempt < c.maxRetries {
			delay := c.backoffDelay(attempt)
			var ra *retryAfterError
			if errors.As(err, &ra) {
				delay = ra.wait
			}
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("search failed after %d attempts: %w", c.maxRetries, lastErr)
}

// searchOnce performs a single search request
func (c *Client) searchOnce(ctx context.Context, format string, before int64) ([]ReplayRef, error) {
	params := url.Values{}
	params.Set("format", format)
	if before > 0 {
		params.Set("before", strconv.FormatInt(before, 10))
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w (%w)", err, errTransient)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Decoded below

	case resp.StatusCode == http.StatusTooManyRequests:
		wait := defaultRetryAfter
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if seconds, err := strconv.Atoi(ra); err == nil {
				wait = time.Duration(seconds) * time.Second
			}
		}
		return nil, &retryAfterError{wait: wait}

	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		// The index answers searches for nonexistent formats this way
		return nil, fmt.Errorf("%q: %w", format, ErrUnknownFormat)

	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("index returned status %d: %w", resp.StatusCode, errTransient)

	default:
		return nil, fmt.Errorf("index returned unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w (%w)", err, errTransient)
	}

	var page []ReplayRef
	if err := json.Unmarshal(body, &page); err != nil {
		// Truncated or malformed payloads get retried like any other
		// transient fault
		return nil, fmt.Errorf("failed to decode page: %v (%w)", err, errTransient)
	}

	return page, nil
}

func isRetryable(err error) bool {
	var ra *retryAfterError
	if errors.As(err, &ra) {
		return true
	}
	return errors.Is(err, errTransient)
}

// backoffDelay returns min(2^attempt seconds, cap)
func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := time.Duration(1<<uint(attempt)) * time.Second
	if delay > c.backoffCap {
		delay = c.backoffCap
	}
	return delay
}

// pace blocks until the minimum interval since the last request has
// elapsed
func (c *Client) pace(ctx context.Context) error {
	if c.minInterval <= 0 {
		return nil
	}

	c.mu.Lock()
	now := time.Now()
	var wait time.Duration
	if !c.lastRequest.IsZero() {
		if next := c.lastRequest.Add(c.minInterval); now.Before(next) {
			wait = next.Sub(now)
		}
	}
	c.lastRequest = now.Add(wait)
	c.mu.Unlock()

	if wait > 0 {
		return sleepCtx(ctx, wait)
	}
	return nil
}

// sleepCtx sleeps unless the context is cancelled first
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
