// Package connectivity tracks upstream network health and answers the
// resolver's offline probe. It watches the outcome of upstream fetches and
// flips offline after a run of consecutive failures, so the resolver can
// short-circuit to the offline fallback instead of waiting on a dead link.
package connectivity

import (
	"time"
)

// DefaultFailureThreshold is the number of consecutive upstream failures
// after which the probe reports offline.
const DefaultFailureThreshold = 3

// State represents the current connectivity assessment. It is process-local:
// each edge instance judges its own link to the origin.
type State struct {
	// ConsecutiveFailures counts upstream fetch failures since the last
	// success.
	ConsecutiveFailures int

	// LastFailure is when the most recent upstream failure was recorded.
	LastFailure time.Time

	// LastSuccess is when the most recent upstream success was recorded.
	LastSuccess time.Time

	// IsOnline is the current assessment. True until ConsecutiveFailures
	// reaches the configured threshold; a single success restores it.
	IsOnline bool
}

// UpdateHealth recomputes IsOnline against the given failure threshold.
func (s *State) UpdateHealth(threshold int) {
	s.IsOnline = s.ConsecutiveFailures < threshold
}

// SinceLastSuccess returns how long ago the last successful fetch was.
// Returns 0 when no success has been recorded yet.
func (s *State) SinceLastSuccess() time.Duration {
	if s.LastSuccess.IsZero() {
		return 0
	}
	return time.Since(s.LastSuccess)
}
