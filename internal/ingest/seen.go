package ingest

import "sync"

// SeenURLs is the process-lifetime membership set of source URLs already
// persisted. It grows monotonically; entries are added only after the
// persistence call for the URL has returned success.
type SeenURLs struct {
	mu   sync.RWMutex
	urls map[string]struct{}
}

// NewSeenURLs returns an empty set.
func NewSeenURLs() *SeenURLs {
	return &SeenURLs{urls: make(map[string]struct{})}
}

// Contains reports whether the URL has been marked seen.
func (s *SeenURLs) Contains(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.urls[url]
	return ok
}

// Add marks the URL seen. The check-and-insert is atomic; the return
// value reports whether this call inserted it.
func (s *SeenURLs) Add(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.urls[url]; ok {
		return false
	}
	s.urls[url] = struct{}{}
	return true
}

// AddAll marks every URL seen.
func (s *SeenURLs) AddAll(urls []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range urls {
		s.urls[u] = struct{}{}
	}
}

// Len returns the current membership count.
func (s *SeenURLs) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.urls)
}
