package precache

import (
	"context"
	"net/http"
	"sync"
)

// MemoryStore is an in-process precache for tests, examples, and
// single-instance deployments. It satisfies the resolver's PrecacheStore
// contract directly.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryStore creates an empty in-memory precache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*Entry),
	}
}

// Put stores an entry under the given key.
func (s *MemoryStore) Put(key string, entry *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
}

// Delete removes an entry.
func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Lookup returns the precached shell response for a key, or nil when no
// entry exists. Each call materializes a fresh single-use body.
func (s *MemoryStore) Lookup(ctx context.Context, key string) (*http.Response, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		PrecacheMisses.Inc()
		return nil, nil
	}
	PrecacheHits.Inc()
	return entry.Response(), nil
}
