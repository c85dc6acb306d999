package export

import (
	"sort"
	"sync"
)

// Session tracks delivered item ids for the lifetime of a batch session.
type Session struct {
	mu        sync.RWMutex
	delivered map[string]struct{}
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{delivered: make(map[string]struct{})}
}

// Mark records ids as delivered. Marking an id again is a no-op.
func (s *Session) Mark(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.delivered[id] = struct{}{}
	}
}

// Delivered reports whether id has been delivered.
func (s *Session) Delivered(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.delivered[id]
	return ok
}

// IDs returns the delivered ids, sorted.
func (s *Session) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.delivered))
	for id := range s.delivered {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of delivered ids.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.delivered)
}

// Reset forgets every delivery. Only call when the session is closed or
// reopened.
func (s *Session) Reset() {
	s.mu.Lock()
	s.delivered = make(map[string]struct{})
	s.mu.Unlock()
}
