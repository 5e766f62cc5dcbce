package store

import "errors"

// Domain-specific errors for store operations.
// Use errors.Is() to check for these errors:
//
//	if errors.Is(err, store.ErrNotFound) {
//	    // Handle missing record
//	}
var (
	// ErrNotFound is returned when an operation names a key absent from the collection.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a create or rename targets a key already present.
	ErrConflict = errors.New("already exists")

	// ErrCorrupt is returned when the persisted document cannot be parsed,
	// or a persisted record no longer passes validation.
	ErrCorrupt = errors.New("corrupt document")

	// ErrInvalidCollection is returned by backends for collection names
	// that cannot be mapped safely to a file, row or object name.
	ErrInvalidCollection = errors.New("invalid collection name")
)

// Outcome classifies an operation error for telemetry.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrCorrupt):
		return "corrupt"
	default:
		return "error"
	}
}
