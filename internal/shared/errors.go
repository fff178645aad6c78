package shared

import "errors"

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrValidation indicates the request payload failed validation.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate indicates a unique constraint was violated.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrConcurrencyConflict indicates the operation lost a race against a
	// concurrent mutation of the same row and may be retried by the caller.
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
)

// UserSafeMessage maps known domain errors to text that can be shown to API
// consumers without leaking internals.
func UserSafeMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "The requested resource was not found."
	case errors.Is(err, ErrValidation):
		return "The request contains invalid data."
	case errors.Is(err, ErrDuplicate):
		return "A resource with the same identifier already exists."
	case errors.Is(err, ErrConcurrencyConflict):
		return "The resource was modified concurrently. Please retry."
	default:
		return "Something went wrong. Please try again later."
	}
}
