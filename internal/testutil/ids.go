package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDs generates deterministic query ids ("query-1", "query-2", ...)
// so that logged output can be compared byte for byte.
//
// Thread-safety: all methods are safe for concurrent use.
type SequenceIDs struct {
	mu  sync.Mutex
	seq int64
}

// Generate returns the next id.
func (s *SequenceIDs) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return fmt.Sprintf("query-%d", s.seq)
}

// Issued returns how many ids have been generated.
func (s *SequenceIDs) Issued() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Reset restarts the sequence at query-1.
func (s *SequenceIDs) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = 0
}
