package precache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotPrecached indicates no shell entry exists for the requested key.
	ErrNotPrecached = errors.New("document not precached")

	// ErrInvalidEntry indicates the stored entry is corrupted.
	ErrInvalidEntry = errors.New("invalid precache entry")
)

// Manager handles precache operations with a Redis backend. Entries are
// written without TTL: a deployed shell stays precached until the next
// deployment replaces or deletes it.
type Manager struct {
	redis *redis.Client
}

// NewManager creates a precache manager with a Redis backend.
func NewManager(redisClient *redis.Client) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Manager{
		redis: redisClient,
	}
}

// Get retrieves the precached entry for a key.
// Returns ErrNotPrecached if no entry exists.
func (m *Manager) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := m.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			PrecacheMisses.Inc()
			return nil, ErrNotPrecached
		}
		PrecacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		PrecacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	PrecacheHits.Inc()
	return &entry, nil
}

// Put stores a precache entry under the given key, replacing any previous
// deployment's entry.
func (m *Manager) Put(ctx context.Context, key string, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("precache entry cannot be nil")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		PrecacheErrors.WithLabelValues("put").Inc()
		return fmt.Errorf("marshal precache entry: %w", err)
	}

	if err := m.redis.Set(ctx, key, data, 0).Err(); err != nil {
		PrecacheErrors.WithLabelValues("put").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes a precache entry.
func (m *Manager) Delete(ctx context.Context, key string) error {
	if err := m.redis.Del(ctx, key).Err(); err != nil {
		PrecacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}
