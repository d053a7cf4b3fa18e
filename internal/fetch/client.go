// Package fetch downloads thumbnail images over HTTP.
//
// Every failure is wrapped in *Error so the scan pool can log one frame's
// locator and status and move on; nothing here aborts a batch.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default client settings.
const (
	// DefaultTimeout bounds a single thumbnail download.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize limits how much of a response body is read.
	// Thumbnails are small JPEGs; anything larger is not a thumbnail.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultUserAgent identifies clicker-scrape in HTTP requests.
	DefaultUserAgent = "clicker-scrape/1.0 (+https://github.com/Bennyli1995/clicker-scrape)"
)

// Error is a per-frame fetch failure. StatusCode is zero for transport
// errors.
type Error struct {
	// Locator is the URL that failed.
	Locator string

	// StatusCode is the HTTP status for non-2xx responses, zero otherwise.
	StatusCode int

	// Err is the underlying transport error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.Locator, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Locator, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Client downloads thumbnail images. It satisfies the scan package's
// FrameFetcher capability.
type Client struct {
	hc          *http.Client
	userAgent   string
	maxBodySize int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.hc.Timeout = d
		}
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely.
// Useful for proxies and tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// NewClient creates a thumbnail download client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		hc:          &http.Client{Timeout: DefaultTimeout},
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchByLocator downloads the image at the given URL.
// Non-2xx responses and transport failures return *Error.
func (c *Client) FetchByLocator(ctx context.Context, locator string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, &Error{Locator: locator, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &Error{Locator: locator, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Locator: locator, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, &Error{Locator: locator, Err: err}
	}

	return body, nil
}
