package precache

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Store adapts a Manager to the resolver's PrecacheStore contract: a lookup
// that yields a response or nil. Infrastructure errors are logged and
// reported as a miss, so a broken store degrades resolution to the network
// candidate instead of failing the navigation.
type Store struct {
	manager *Manager
	logger  zerolog.Logger
}

// NewStore creates the resolver-facing adapter around a manager.
func NewStore(manager *Manager) *Store {
	return &Store{
		manager: manager,
		logger:  log.With().Str("component", "precache-store").Logger(),
	}
}

// Lookup returns the precached shell response for a key, or nil when no
// entry exists. The returned response carries a fresh single-use body.
func (s *Store) Lookup(ctx context.Context, key string) (*http.Response, error) {
	entry, err := s.manager.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotPrecached) {
			s.logger.Warn().Err(err).Str("key", key).Msg("Precache get failed, treating as miss")
		}
		return nil, nil
	}
	return entry.Response(), nil
}
