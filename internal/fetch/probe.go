package fetch

import (
	"context"
	"fmt"
	"mime"
	"net/http"
)

// ProbeResult holds metadata discovered with a HEAD request.
type ProbeResult struct {
	URL         string
	ContentType string
	Filename    string
	Size        int64
	StatusCode  int
}

// Probe issues a HEAD request and returns content metadata. It is used to
// disambiguate links whose extension cannot be determined from the URL alone.
// Callers are expected to treat probe failures as non-fatal.
func (c *Client) Probe(ctx context.Context, urlStr string) (*ProbeResult, error) {
	req, err := c.newRequest(ctx, http.MethodHead, urlStr)
	if err != nil {
		return nil, err
	}

	resp, err := c.pageClient.Do(req)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "HEAD request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	result := &ProbeResult{
		URL:         urlStr,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
		StatusCode:  resp.StatusCode,
	}

	if disposition := resp.Header.Get("Content-Disposition"); disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			result.Filename = params["filename"]
		}
	}

	if resp.StatusCode != http.StatusOK {
		return result, &Error{
			URL:     urlStr,
			Message: fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	return result, nil
}
