package store

import "errors"

var (
	// ErrNotFound means the referenced game does not exist.
	ErrNotFound = errors.New("game not found")

	// ErrConflict means an optimistic transaction lost its retry budget
	// to concurrent writers. The caller may resubmit.
	ErrConflict = errors.New("transaction conflict: retries exhausted")

	// ErrUnavailable means the backing store could not be reached.
	// It is surfaced immediately, never retried here.
	ErrUnavailable = errors.New("store unavailable")
)
