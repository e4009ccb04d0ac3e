package interfaces

import "errors"

var (
	// ErrNotFound is returned when the referenced document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPreconditionFailed is returned by conditional writes when the
	// document no longer matches the expected prior state. The stored
	// document is unchanged; the caller decides how to surface the loss.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrDuplicate is returned when a unique index rejects the write.
	ErrDuplicate = errors.New("duplicate key")
)
