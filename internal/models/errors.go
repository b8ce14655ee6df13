package models

import (
	"errors"
	"fmt"
)

// ErrMissingAction is returned when appending an event without an action.
var ErrMissingAction = errors.New("action is required")

// ErrInvalidFilter marks caller input that cannot be turned into a query
// (maps to HTTP 400). Use FilterError to name the offending field.
var ErrInvalidFilter = errors.New("invalid filter")

// ErrDataSourceUnavailable wraps every failure talking to the event or user
// store (maps to HTTP 500 with a generic message).
var ErrDataSourceUnavailable = errors.New("data source unavailable")

// FilterError is an ErrInvalidFilter bound to a specific request field.
type FilterError struct {
	Field  string
	Reason string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports ErrInvalidFilter so callers can match with errors.Is.
func (e *FilterError) Is(target error) bool {
	return target == ErrInvalidFilter
}

// NewFilterError returns a FilterError for field.
func NewFilterError(field, reason string) error {
	return &FilterError{Field: field, Reason: reason}
}

// Unavailable wraps err as ErrDataSourceUnavailable, keeping the cause in the chain.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrDataSourceUnavailable, err)
}
