package resolver

import (
	"errors"
	"fmt"
)

// ErrNoCandidate is returned when neither the precache, nor the network, nor
// the offline fallback produced a response. It is terminal: the caller
// surfaces it as the browser's default network-error page.
var ErrNoCandidate = errors.New("no candidate response available")

// NetworkError wraps a rejected network candidate (fetch or preload).
// It unwraps to the original transport error, so callers that matched on the
// raw error before this type existed keep working via errors.Is/As.
type NetworkError struct {
	// Op identifies the failed candidate source: "fetch" or "preload".
	Op string

	// Err is the original error from the transport or preload subsystem.
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("shell %s failed: %v", e.Op, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *NetworkError) Unwrap() error {
	return e.Err
}
