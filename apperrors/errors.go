package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Domain error classes. Services wrap these with context; controllers map
// them to HTTP status codes with errors.Is.
var (
	// ErrUnauthenticated covers every token failure (missing, malformed, bad
	// signature, expired). The distinction is never exposed to callers.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the identity is valid but may not touch the resource.
	ErrForbidden = errors.New("access denied")

	ErrNotFound = errors.New("not found")

	// ErrSlotTaken is the scheduling conflict: another active reservation
	// already occupies the requested (date, time).
	ErrSlotTaken = errors.New("time slot already booked")

	ErrEmailTaken = errors.New("email already registered")

	// ErrChannelFailure marks a notification transport error. It is recorded
	// in the archive and surfaced in dispatch results, never escalated into a
	// failure of the booking operation that triggered the send.
	ErrChannelFailure = errors.New("notification channel failure")
)

// ValidationError lists the required fields missing from a request.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
