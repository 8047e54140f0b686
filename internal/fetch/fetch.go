// Package fetch provides HTTP retrieval of pages and files.
// This package centralizes the HTTP logic used by crawling and downloading.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultPageTimeout is the default timeout for page fetches.
const DefaultPageTimeout = 30 * time.Second

// DefaultFileTimeout is the default timeout for file downloads.
const DefaultFileTimeout = 60 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; MarineScraper/1.0)"

// Error represents an error during an HTTP retrieval.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	PageTimeout time.Duration
	FileTimeout time.Duration
	UserAgent   string
	Headers     map[string]string
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		PageTimeout: DefaultPageTimeout,
		FileTimeout: DefaultFileTimeout,
		UserAgent:   DefaultUserAgent,
	}
}

// Client performs HTTP retrievals with shared options and connection reuse.
type Client struct {
	pageClient *http.Client
	fileClient *http.Client
	options    *Options
}

// NewClient creates a Client. A nil opts uses DefaultOptions.
func NewClient(opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.PageTimeout == 0 {
		opts.PageTimeout = DefaultPageTimeout
	}
	if opts.FileTimeout == 0 {
		opts.FileTimeout = DefaultFileTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	return &Client{
		pageClient: &http.Client{Timeout: opts.PageTimeout},
		fileClient: &http.Client{Timeout: opts.FileTimeout},
		options:    opts,
	}
}

// PageResult holds the content of a fetched page.
type PageResult struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
}

func (c *Client) newRequest(ctx context.Context, method, urlStr string) (*http.Request, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, nil)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	req.Header.Set("User-Agent", c.options.UserAgent)
	for key, value := range c.options.Headers {
		req.Header.Set(key, value)
	}
	return req, nil
}

// Page retrieves HTML content from a URL.
func (c *Client) Page(ctx context.Context, urlStr string) (*PageResult, error) {
	req, err := c.newRequest(ctx, http.MethodGet, urlStr)
	if err != nil {
		return nil, err
	}

	resp, err := c.pageClient.Do(req)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	result := &PageResult{
		URL:         urlStr,
		HTML:        string(bodyBytes),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode != http.StatusOK {
		return result, &Error{
			URL:     urlStr,
			Message: fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	return result, nil
}
