package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is() checking.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation error")
	ErrConflict    = errors.New("conflict")
	ErrForbidden   = errors.New("forbidden")
	ErrUnavailable = errors.New("unavailable")
)

// ValidationError provides programmatic access to field-level validation failures.
// Use errors.Is(err, ErrValidation) for simple checks, or errors.As(err, &verr) to
// access verr.Fields for per-field error details.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// OperationError reports the failure of a single configuration operation:
// the target resource could not be reached, a precondition was violated, or
// the backing store rejected the mutation. It is the only error kind the
// configurator core understands; the orchestrator converts it into a ledger
// result and never lets it escape to the caller.
//
// ResourceID is set when the failing operation had already produced a
// resource identifier (e.g. a managed-service instance pid) that an operator
// needs in order to remediate manually.
type OperationError struct {
	Cause      string
	ResourceID string
	Err        error
}

func (e *OperationError) Error() string {
	if e.ResourceID != "" {
		return fmt.Sprintf("%s (resource %s)", e.Cause, e.ResourceID)
	}
	return e.Cause
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// OperationFailed wraps err in an OperationError with a formatted cause.
func OperationFailed(err error, format string, args ...any) *OperationError {
	return &OperationError{Cause: fmt.Sprintf(format, args...), Err: err}
}
