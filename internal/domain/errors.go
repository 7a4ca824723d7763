package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every layer. Typed errors below wrap one of these
// so callers can branch with errors.Is and still read the details with errors.As.
var (
	ErrNotFound               = errors.New("not found")
	ErrValidation             = errors.New("validation failed")
	ErrInvalidFilterParameter = errors.New("invalid filter parameter")
	ErrUnauthenticated        = errors.New("authentication required")
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("conflict")
)

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError creates a NotFoundError for the given entity and identifier.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError reports input that failed a domain rule.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// ConflictError reports a lost optimistic-locking race.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NewConflictError creates a ConflictError with the given message.
func NewConflictError(msg string) error {
	return &ConflictError{Message: msg}
}

// NewUnauthenticatedError annotates ErrUnauthenticated with a reason.
func NewUnauthenticatedError(reason string) error {
	return fmt.Errorf("%w: %s", ErrUnauthenticated, reason)
}
