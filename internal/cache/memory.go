package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for local runs and tests.
// Safe for concurrent use; lazily evicts on read.
type MemoryStore struct {
	mu  sync.RWMutex
	m   map[string]memEntry
	now func() time.Time
}

type memEntry struct {
	data    []byte
	expires time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]memEntry), now: time.Now}
}

// Get returns the value or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.m[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if !e.expires.IsZero() && s.now().After(e.expires) {
		s.mu.Lock()
		delete(s.m, key)
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	return e.data, nil
}

// SetWithTTL stores a value; ttl <= 0 means no store-level expiry.
func (s *MemoryStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memEntry{data: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.m[key] = e
	s.mu.Unlock()
	return nil
}

// Del removes a key. Deleting a missing key is not an error.
func (s *MemoryStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
	return nil
}

// Len reports the number of live entries (tests).
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
