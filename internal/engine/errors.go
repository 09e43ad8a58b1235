package engine

import "errors"

var (
	// ErrNotFound is returned when an operation names an entry id that
	// does not exist in the log.
	ErrNotFound = errors.New("entry not found")

	// ErrNotPending is returned when a cancellation targets an entry
	// that has already reached a terminal status.
	ErrNotPending = errors.New("entry not pending")
)
