package domain

import (
	"errors"
	"fmt"
)

// Application errors
var (
	// ErrNotFound record not found
	ErrNotFound = errors.New("record not found")

	// ErrUnauthenticated user is not authenticated
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidInput invalid input data
	ErrInvalidInput = errors.New("invalid input data")

	// ErrQuotaExceeded free-tier generation quota exhausted
	ErrQuotaExceeded = errors.New("free generation quota exceeded")

	// ErrTimeoutExceeded external job exceeded its polling budget
	ErrTimeoutExceeded = errors.New("timeout exceeded")

	// ErrExternalServiceUnavailable external service unavailable
	ErrExternalServiceUnavailable = errors.New("external service unavailable")

	// ErrInternal internal error
	ErrInternal = errors.New("internal error")
)

// ValidationError describes a single invalid field
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors is a set of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}

	if len(e) == 1 {
		return fmt.Sprintf("validation failed: %s - %s", e[0].Field, e[0].Message)
	}

	return fmt.Sprintf("validation failed: %d errors", len(e))
}

// Is reports validation errors as ErrInvalidInput
func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidInput
}

// Add appends a validation error
func (e *ValidationErrors) Add(field, message string) {
	*e = append(*e, ValidationError{Field: field, Message: message})
}

// HasErrors reports whether any error was recorded
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Fields returns the list of offending fields
func (e ValidationErrors) Fields() []string {
	fields := make([]string, len(e))
	for i, err := range e {
		fields[i] = err.Field
	}
	return fields
}

// ProviderError represents a failure of an external generation provider
type ProviderError struct {
	Provider    string
	Code        string
	Message     string
	StatusCode  int
	OriginalErr error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("%s provider error [%s]: %s: %v", e.Provider, e.Code, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("%s provider error [%s]: %s", e.Provider, e.Code, e.Message)
}

// Unwrap returns the original error
func (e *ProviderError) Unwrap() error {
	return e.OriginalErr
}

// Is reports provider errors as ErrExternalServiceUnavailable
func (e *ProviderError) Is(target error) bool {
	return target == ErrExternalServiceUnavailable
}

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, statusCode int, err error) *ProviderError {
	return &ProviderError{
		Provider:    provider,
		Code:        code,
		Message:     message,
		StatusCode:  statusCode,
		OriginalErr: err,
	}
}

// NotFoundError represents a "not found" error for a concrete entity
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Entity, e.ID)
}

// Is reports the error as ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new "not found" error
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{
		Entity: entity,
		ID:     id,
	}
}
