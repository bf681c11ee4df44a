package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when client input fails validation.
	// Validation failures are reported as *ValidationError, which wraps this sentinel.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when a task ID is malformed or not positive.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidTaskStatus is returned when a status string is not one of the known values.
	ErrInvalidTaskStatus = errors.New("invalid task status")
)
