// Package shared contains common domain types, errors and events that are
// used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrInvalidInput  = errors.New("invalid input")
	ErrEmptyValue    = errors.New("value cannot be empty")
	ErrInvalidFormat = errors.New("invalid format")

	// Source errors
	ErrSourceUnavailable = errors.New("source unavailable")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "roster", "pool", "import"
	Op      string // Operation that failed, e.g., "Add", "Pick"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching. Two DomainErrors match when they
// describe the same domain, operation and kind, so a wrapped copy produced
// by WithCause still matches its template.
func (e *DomainError) Is(target error) bool {
	if t, ok := target.(*DomainError); ok {
		return e.Domain == t.Domain && e.Op == t.Op && e.Kind == t.Kind
	}
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// WithCause returns a copy of the error carrying err as its cause.
func (e *DomainError) WithCause(err error) *DomainError {
	c := *e
	c.Err = err
	return &c
}

// WithMessage returns a copy of the error with a more specific message.
func (e *DomainError) WithMessage(format string, args ...any) *DomainError {
	c := *e
	c.Message = fmt.Sprintf(format, args...)
	return &c
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Roster errors
var (
	ErrDuplicateStudent = NewDomainError("roster", "Add", ErrAlreadyExists, "student already exists")
	ErrInvalidStudent   = NewDomainError("roster", "Add", ErrEmptyValue, "name and group cannot be empty")
)

// Sampling errors
var (
	ErrNoEligibleStudents = NewDomainError("pool", "Pick", ErrNotFound, "no eligible students")
)

// Import errors
var (
	ErrSourceUnreadable = NewDomainError("import", "Open", ErrSourceUnavailable, "source could not be read")
	ErrMalformedRecord  = NewDomainError("import", "Parse", ErrInvalidFormat, "malformed record")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrInvalidFormat)
}
