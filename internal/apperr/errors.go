// Package apperr defines the error taxonomy shared across the service.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no blob exists at a resolved key.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a conditional write loses its race and
	// bounded retries are exhausted.
	ErrConflict = errors.New("conflict")
	// ErrValidation is returned for malformed client input. Never retried.
	ErrValidation = errors.New("validation failed")
)

// Validationf wraps ErrValidation with a formatted reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}
