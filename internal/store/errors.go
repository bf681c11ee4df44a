package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
// Every failure a store returns wraps at most one of these sentinels; a
// failure that wraps none of them is unclassified.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// It is a normal negative result, not a fault.
	ErrNotFound = errors.New("entity not found")

	// ErrConstraintViolation is returned when the backing store rejects a
	// well-formed write because of a uniqueness, check or schema constraint.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrStoreUnavailable is returned for transient infrastructure failures
	// (connection refused, timeout, throttling). Callers may choose to retry.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrTaskNotFound indicates that the requested task does not exist in the store.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConstraintViolation checks if the error reports a rejected write.
func IsConstraintViolation(err error) bool {
	return errors.Is(err, ErrConstraintViolation)
}

// IsUnavailable checks if the error reports a transient store failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "task")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// Classified joins a taxonomy sentinel with the underlying cause so both are
// visible to errors.Is while the message keeps the original detail.
func Classified(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}
