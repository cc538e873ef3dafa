package apperr

import (
	"errors"
	"net/http"
)

// Sentinel errors shared by all services. Controllers translate these into the
// uniform error envelope; services never write HTTP status codes themselves.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrUnauthenticated     = errors.New("invalid credentials")
	ErrTransactionConflict = errors.New("operation could not be completed due to concurrent activity, please try again")

	// ErrNoUnbilledCharges is a normal, non-mutating outcome of invoice
	// generation, not a failure.
	ErrNoUnbilledCharges = errors.New("no unbilled charges found for this period")
)

// ConflictError means the request was valid but the current state forbids the
// transition. The reason is shown to the caller as-is.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// Conflict wraps a human-readable reason into a ConflictError.
func Conflict(reason string) error {
	return &ConflictError{Reason: reason}
}

// Named conflict variants used by the admission and appointment workflows.
var (
	ErrBedUnavailable   = Conflict("This bed is not available")
	ErrAlreadyCompleted = Conflict("This appointment has already been completed")

	// Tenant setup defects: zero or multiple default consultation services.
	// These need an administrative fix, not a retry.
	ErrConsultationNotConfigured = Conflict("A default 'Consultation' service has not been configured for this organization")
	ErrConsultationAmbiguous     = Conflict("Multiple 'Consultation' services found. Please configure only one default")
)

// NotFound wraps ErrNotFound with a specific message.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound builds a NotFoundError naming the missing entity.
func NotFound(message string) error {
	return &NotFoundError{Message: message}
}

// InvalidArgument wraps ErrInvalidArgument with a specific message.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string { return e.Message }
func (e *InvalidArgumentError) Unwrap() error { return ErrInvalidArgument }

func InvalidArgument(message string) error {
	return &InvalidArgumentError{Message: message}
}

// IsConflict reports whether err is a state-transition conflict.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// HTTPStatus maps a service error to its HTTP-equivalent status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case IsConflict(err):
		return http.StatusBadRequest
	case errors.Is(err, ErrTransactionConflict):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
