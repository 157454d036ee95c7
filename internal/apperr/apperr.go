// Package apperr defines the failure kinds shared by the costing engine and its callers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrInvalid  = errors.New("invalid input")
	ErrNotFound = errors.New("record not found")
	ErrStorage  = errors.New("storage failure")
)

// ValidationError rejects an input before any mutation happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// Invalid builds a ValidationError for the named field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFound reports a missing record of the given kind.
func NotFound(kind string, id uint) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}

// Storage wraps a driver or transaction error so that both ErrStorage and the cause match.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStorage, err))
}
