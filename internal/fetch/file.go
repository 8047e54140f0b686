package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// copyChunkSize bounds how much of a response body is held in memory at once.
const copyChunkSize = 32 * 1024

// File streams the body of urlStr into dest, creating parent directories as
// needed. It returns the number of bytes written. On any failure the partial
// file is removed so callers never see a truncated download at dest.
// There is no retry here; retry policy belongs to the caller.
func (c *Client) File(ctx context.Context, urlStr string, dest string) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, urlStr)
	if err != nil {
		return 0, err
	}

	resp, err := c.fileClient.Do(req)
	if err != nil {
		return 0, &Error{
			URL:     urlStr,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, &Error{
			URL:     urlStr,
			Message: fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, &Error{
			URL:     urlStr,
			Message: fmt.Sprintf("failed to create directory for %s", dest),
			Cause:   err,
		}
	}

	out, err := os.Create(dest)
	if err != nil {
		return 0, &Error{
			URL:     urlStr,
			Message: fmt.Sprintf("failed to create %s", dest),
			Cause:   err,
		}
	}

	written, err := io.CopyBuffer(out, resp.Body, make([]byte, copyChunkSize))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dest)
		return 0, &Error{
			URL:     urlStr,
			Message: "failed to write response body",
			Cause:   err,
		}
	}

	return written, nil
}
