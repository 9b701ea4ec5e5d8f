package reading

import "errors"

// Domain-specific errors for reading aggregation and persistence.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrBadValue is returned when a light feed payload does not parse as a
	// number. The update is dropped; the buffer is untouched.
	ErrBadValue = errors.New("reading: value does not parse as a number")

	// ErrInsertFailed is returned when a persistence insert fails.
	ErrInsertFailed = errors.New("reading: insert failed")
)
