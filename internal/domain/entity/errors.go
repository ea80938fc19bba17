package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for request intake.
var (
	// ErrEmptyBody indicates that the request carried no body at all.
	ErrEmptyBody = errors.New("no request body provided")

	// ErrMalformedPayload indicates that the body could not be decoded as a summarize request.
	ErrMalformedPayload = errors.New("malformed request payload")

	// ErrTextRequired indicates that the text field is absent or contains only whitespace.
	ErrTextRequired = errors.New("text is required")
)

// ValidationError represents a validation error with detailed field information.
// It unwraps to the sentinel it was built from so callers can classify it with errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
