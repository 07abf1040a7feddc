// Package store defines the shared error taxonomy for record storage.
//
// Repositories wrap these sentinels with fmt.Errorf("...: %w", ...) so
// callers can classify failures with errors.Is while still getting a
// human-readable message.
package store

import "errors"

var (
	// ErrNotFound indicates a referenced identifier does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates an identifier is already taken.
	ErrConflict = errors.New("already exists")

	// ErrValidation indicates a missing or malformed required field.
	// Validation errors are raised before any mutation is attempted.
	ErrValidation = errors.New("validation failed")
)
