package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo, engine, and service functions when the
// requested plan, day, or timeline item does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when a timeline item or request value fails
// field-level validation (bad time format, negative cost, and so on).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInvariant is returned when an operation would break a structural rule
// of the itinerary, such as removing the last item of a day.
// Handlers should map this to HTTP 409 Conflict.
var ErrInvariant = errors.New("invariant violation")

// ErrAuditPersistence is returned when the history entry or the document
// could not be written downstream. The mutated plan must be treated as not
// committed and discarded by the caller.
var ErrAuditPersistence = errors.New("audit persistence error")

// ErrGeneratorUnavailable is returned when no plan generator is configured,
// or the configured generator fails to produce a plan.
// Handlers should map this to HTTP 503.
var ErrGeneratorUnavailable = errors.New("plan generator unavailable")

// ValidationError names the offending field of a failed validation.
// It wraps ErrValidation so callers can keep using errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
