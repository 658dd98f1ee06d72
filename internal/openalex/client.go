package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the OpenAlex works endpoint.
	BaseURL = "https://api.openalex.org/works"

	// DefaultTimeout is the per-request timeout. A request that runs past it
	// fails with ErrNetwork and is not retried.
	DefaultTimeout = 15 * time.Second

	// DefaultDelay is the minimum spacing between consecutive requests.
	DefaultDelay = 300 * time.Millisecond

	// DefaultUserAgent identifies the client to OpenAlex.
	DefaultUserAgent = "cocite/1.0"

	// selectFields limits the payload to what resolution needs.
	selectFields = "id,title,authorships"

	// maxBodyBytes bounds how much of a response body is decoded.
	maxBodyBytes = 16 << 20
)

// Client is a paced HTTP client for single-work lookups.
//
// Requests are spaced at least delay apart by a token bucket with burst 1, so
// the pacing holds whether calls come from one goroutine or several.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	userAgent  string
	mailto     string
	requests   atomic.Int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithDelay sets the minimum spacing between requests. Zero disables pacing.
func WithDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.limiter = newLimiter(d)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMailto sets the contact address OpenAlex uses for its polite pool.
func WithMailto(email string) ClientOption {
	return func(c *Client) {
		c.mailto = email
	}
}

// NewClient creates a new OpenAlex client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    newLimiter(DefaultDelay),
		baseURL:    BaseURL,
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newLimiter(d time.Duration) *rate.Limiter {
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

// Requests returns the number of HTTP requests attempted so far.
func (c *Client) Requests() int64 {
	return c.requests.Load()
}

// workURL builds the lookup URL for a work id.
func (c *Client) workURL(workID string) string {
	q := url.Values{}
	q.Set("select", selectFields)
	if c.mailto != "" {
		q.Set("mailto", c.mailto)
	}
	return c.baseURL + "/" + url.PathEscape(workID) + "?" + q.Encode()
}

// checkHTTPErrors returns an error if the HTTP response is not a success.
func checkHTTPErrors(resp *http.Response, workID string) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, workID)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	default:
		return &APIError{StatusCode: resp.StatusCode, WorkID: workID}
	}
}

// GetWork fetches a single work by its OpenAlex identifier (e.g. "W2741809807").
func (c *Client) GetWork(ctx context.Context, workID string) (*Work, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	c.requests.Add(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.workURL(workID), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp, workID); err != nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, err
	}

	var work Work
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&work); err != nil {
		if IsTimeout(err) {
			return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
		}
		return nil, fmt.Errorf("%w: decoding work %s: %v", ErrInvalidResponse, workID, err)
	}

	return &work, nil
}
