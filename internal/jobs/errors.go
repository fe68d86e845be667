package jobs

import "errors"

var (
	// ErrNotFound is returned when an application ID does not exist.
	ErrNotFound = errors.New("job application not found")

	// ErrValidation wraps field-level input errors.
	ErrValidation = errors.New("invalid job application")
)
