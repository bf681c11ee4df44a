package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/tasktrack-api/internal/api/shared"
	"github.com/phrazzld/tasktrack-api/internal/domain"
	"github.com/phrazzld/tasktrack-api/internal/service"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	// Request-shape errors never reach the service.
	if errors.Is(err, domain.ErrInvalidID) || errors.Is(err, shared.ErrMalformedBody) {
		return http.StatusBadRequest
	}

	switch service.Classify(err) {
	case service.OutcomeInvalid:
		return http.StatusUnprocessableEntity
	case service.OutcomeNotFound:
		return http.StatusNotFound
	case service.OutcomeConflict:
		return http.StatusConflict
	case service.OutcomeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid task ID"
	case errors.Is(err, shared.ErrMalformedBody):
		return "Invalid request body"
	}

	switch service.Classify(err) {
	case service.OutcomeInvalid:
		return shared.ValidationFailedMessage
	case service.OutcomeNotFound:
		return "Task not found"
	case service.OutcomeConflict:
		return "Task conflicts with stored data"
	case service.OutcomeUnavailable:
		return "Service temporarily unavailable"
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the response for err. Validation failures get the
// structured per-field body; everything else gets a safe message and a log
// entry with the redacted cause.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := domain.AsValidationError(err); ok {
		shared.RespondWithValidationError(w, r, ve)
		return
	}

	status := MapErrorToStatusCode(err)
	var opts []shared.ResponseOption
	if status == http.StatusConflict {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, opts...)
}
