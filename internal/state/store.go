package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/sdllogs/sdllogs/internal/buffer"
)

// Snapshot is the latest loaded version of the followed log.
type Snapshot struct {
	Path                string
	Buffer              *buffer.Buffer
	Version             int // bumped whenever the text changes
	LoadedAt            time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive failed reloads
}

// HasBuffer reports whether any load has succeeded.
func (s Snapshot) HasBuffer() bool {
	return s.Buffer != nil
}

// IsStale returns true when reloads have failed repeatedly.
func (s Snapshot) IsStale() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update records the result of a load. When err is non-nil the previous
// buffer is kept but the error is recorded for visibility. Buffers are
// immutable, so they are shared rather than copied.
func (s *Store) Update(path string, buf *buffer.Buffer, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if path != "" {
		s.snapshot.Path = path
	}
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LoadedAt = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	if s.snapshot.Buffer == nil || buf == nil || s.snapshot.Buffer.String() != buf.String() {
		s.snapshot.Version++
	}
	s.snapshot.Buffer = buf
	s.snapshot.LastError = nil
	s.snapshot.LoadedAt = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
