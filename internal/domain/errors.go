package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy for everything that comes back from the community backend.
// Geometry and gesture handling never produce these; they are pure math.
var (
	// ErrUnauthorized: identity invalid or missing. Terminal for the panel.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden: action not permitted for this identity. Recoverable.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound: target no longer exists. The caller refreshes the list.
	ErrNotFound = errors.New("not found")
)

// NetworkError marks a transient transport failure. Background polling
// swallows it and retries next cycle; user-initiated actions surface it once.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
