package service

import (
	"errors"
	"fmt"
)

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrQuoteNotFound is returned when a quote is not found
	ErrQuoteNotFound = fmt.Errorf("quote %w", ErrNotFound)

	// ErrAlertNotFound is returned when an alert is not found
	ErrAlertNotFound = fmt.Errorf("alert %w", ErrNotFound)

	// ErrQuoteNumberConflict is returned when no unused quote number could be stored
	ErrQuoteNumberConflict = fmt.Errorf("quote number %w", ErrConflict)

	// ErrDuplicateEstimate is returned when another quote is already linked to the estimate
	ErrDuplicateEstimate = fmt.Errorf("quickbooks estimate already linked: %w", ErrConflict)
)

// ValidationError reports a single invalid field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
