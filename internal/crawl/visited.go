package crawl

import "sync"

// VisitedSet tracks locators already traversed during one crawl session. It
// is created at crawl start and discarded at crawl end; nothing persists it.
// A locator enters the set exactly once, which is what bounds traversal on
// cyclic link graphs.
type VisitedSet struct {
	mu   sync.Mutex
	urls map[string]bool
}

// NewVisitedSet creates an empty VisitedSet.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{urls: make(map[string]bool)}
}

// MarkIfNew records url and returns true if it had not been seen before.
func (s *VisitedSet) MarkIfNew(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.urls[url] {
		return false
	}
	s.urls[url] = true
	return true
}

// Seen reports whether url has been recorded.
func (s *VisitedSet) Seen(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.urls[url]
}

// Len returns the number of recorded locators.
func (s *VisitedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.urls)
}
