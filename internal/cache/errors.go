// Package cache provides a disk-backed download cache with a JSON index.
package cache

import "fmt"

// WriteError represents a filesystem failure while adding to or persisting the
// cache. It is distinct from a plain miss so callers can tell "not cached"
// apart from "failed to cache".
type WriteError struct {
	URL     string
	Message string
	Cause   error
}

func (e *WriteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache write error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("cache write error for %s: %s", e.URL, e.Message)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}
