package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/tasktrack-api/internal/domain"
	"github.com/phrazzld/tasktrack-api/internal/store"
)

// Common sentinel errors for TaskService.
var (
	// ErrTaskNotFound indicates that the task does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrTaskNotFound = errors.New("task not found")
)

// TaskServiceError wraps errors from the task service with context.
type TaskServiceError struct {
	// Operation is the operation that failed (e.g., "create_task", "update_task")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
// Missing tasks become ErrTaskNotFound and validation errors are returned
// as-is; everything else is wrapped with the store error kept in the chain.
func NewTaskServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrTaskNotFound) || store.IsNotFoundError(err) {
		return ErrTaskNotFound
	}

	if errors.Is(err, domain.ErrValidation) {
		return err
	}

	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// Outcome is the externally visible result category of a facade call.
type Outcome int

// Outcomes, one per error category plus success.
const (
	OutcomeOK Outcome = iota
	OutcomeInvalid
	OutcomeNotFound
	OutcomeConflict
	OutcomeUnavailable
	OutcomeUnclassified
)

var outcomeNames = map[Outcome]string{
	OutcomeOK:           "ok",
	OutcomeInvalid:      "invalid",
	OutcomeNotFound:     "not_found",
	OutcomeConflict:     "conflict",
	OutcomeUnavailable:  "unavailable",
	OutcomeUnclassified: "unclassified",
}

// String returns the outcome's snake_case name.
func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// IsClientError reports whether the outcome is caused by the request rather
// than by the system.
func (o Outcome) IsClientError() bool {
	return o == OutcomeInvalid || o == OutcomeNotFound || o == OutcomeConflict
}

// Classify maps any error returned by TaskService (or a store) onto exactly
// one Outcome. A nil error is OutcomeOK.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrValidation):
		return OutcomeInvalid
	case errors.Is(err, ErrTaskNotFound), store.IsNotFoundError(err):
		return OutcomeNotFound
	case store.IsConstraintViolation(err):
		return OutcomeConflict
	case store.IsUnavailable(err):
		return OutcomeUnavailable
	default:
		return OutcomeUnclassified
	}
}
