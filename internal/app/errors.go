package app

import (
	"errors"
	"fmt"
)

// ValidationError reports bad caller input, rejected before any state
// mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ErrSessionNotFound is returned for operations on a session id the
// registry does not know.
var ErrSessionNotFound = errors.New("session not found")
