package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is wrapped by every configuration error. Callers fix the
	// input, these are never retried.
	ErrValidation = errors.New("validation error")

	ErrRunNotFound = errors.New("run not found")

	// ErrFacilitiesUnavailable is returned when no facility source is configured.
	ErrFacilitiesUnavailable = errors.New("health facility lookup is not configured")
)

// Invalid builds a validation error for field.
func Invalid(field string, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, fmt.Sprintf(format, args...))
}
