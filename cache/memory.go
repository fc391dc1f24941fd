package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	value     any
	expiresAt time.Time
}

// errUnencoded is returned by Get for entries written through SetValue.
var errUnencoded = errors.New("cache: entry holds an unencoded value")

// MemoryStore is an in-process [Store] and [ValueStore]. Expired entries are
// dropped lazily on read and in bulk by [MemoryStore.Sweep].
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

var (
	_ Store      = (*MemoryStore)(nil)
	_ ValueStore = (*MemoryStore)(nil)
)

// NewMemoryStore returns an empty store using the wall clock.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// WithClock replaces the store's time source. Intended for tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

// Get returns a copy of the bytes stored under key. Entries written with
// SetValue are reported as an error.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.live(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", errUnencoded, key)
	}
	return cloneBytes(b), true, nil
}

// Set stores a copy of value under key for ttl. A ttl <= 0 stores nothing.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	return s.put(key, cloneBytes(value), ttl)
}

// GetValue returns the value stored under key as written. Byte entries are
// copied.
func (s *MemoryStore) GetValue(_ context.Context, key string) (any, bool, error) {
	v, ok := s.live(key)
	if !ok {
		return nil, false, nil
	}
	if b, isBytes := v.([]byte); isBytes {
		return cloneBytes(b), true, nil
	}
	return v, true, nil
}

// SetValue stores value under key for ttl without encoding it. A ttl <= 0
// stores nothing.
func (s *MemoryStore) SetValue(_ context.Context, key string, value any, ttl time.Duration) error {
	if b, isBytes := value.([]byte); isBytes {
		value = cloneBytes(b)
	}
	return s.put(key, value, ttl)
}

// live returns the unexpired value for key, evicting it when expired.
func (s *MemoryStore) live(key string) (any, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		if cur, ok := s.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (s *MemoryStore) put(key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	s.entries[key] = memoryEntry{value: value, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep deletes every expired entry and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
