package docstore

import "fmt"

// ErrNotFound indicates no document matched the given key.
type ErrNotFound struct {
	Collection string
	Key        string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("document %q not found in %s", e.Key, e.Collection)
}

// ErrUnavailable indicates the backing store is unreachable.
type ErrUnavailable struct {
	Err error
}

func (e *ErrUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("document store unavailable: %v", e.Err)
	}
	return "document store unavailable"
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

// ErrConflict indicates a write collided with an existing document key.
type ErrConflict struct {
	Collection string
	Key        string
}

func (e *ErrConflict) Error() string {
	return fmt.Sprintf("document %q already exists in %s", e.Key, e.Collection)
}
