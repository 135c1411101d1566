// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidSnowflake is returned when a Discord ID is not a numeric snowflake.
	ErrInvalidSnowflake = errors.New("invalid discord snowflake")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")
)

// ValidationError describes which field of an input failed validation.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError. err is usually ErrValidation
// or one of the more specific validation sentinels.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}
