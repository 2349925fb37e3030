package types

import (
	"errors"
	"fmt"
)

// SchemaMismatchError marks model output that failed structural validation:
// unparsable JSON, a missing object, or a plan violating the ReviewPlan
// schema. Callers may retry within their attempt budget. Any other error
// from a generation backend (network, provider, auth) is not wrapped and
// must propagate as-is.
type SchemaMismatchError struct {
	Err error
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: %v", e.Err)
}

func (e *SchemaMismatchError) Unwrap() error {
	return e.Err
}

// NewSchemaMismatchError wraps an existing error as a SchemaMismatchError.
func NewSchemaMismatchError(err error) error {
	return &SchemaMismatchError{Err: err}
}

// IsSchemaMismatch reports whether err is, or wraps, a SchemaMismatchError.
func IsSchemaMismatch(err error) bool {
	var target *SchemaMismatchError
	return errors.As(err, &target)
}

// EngineViolationError marks output from one of our own engines that
// failed self-validation. It always indicates a bug, never bad input,
// and is never downgraded to a degraded response.
type EngineViolationError struct {
	Err error
}

func (e *EngineViolationError) Error() string {
	return fmt.Sprintf("engine violation: %v", e.Err)
}

func (e *EngineViolationError) Unwrap() error {
	return e.Err
}

// NewEngineViolationError wraps an existing error as an EngineViolationError.
func NewEngineViolationError(err error) error {
	return &EngineViolationError{Err: err}
}

// IsEngineViolation reports whether err is, or wraps, an EngineViolationError.
func IsEngineViolation(err error) bool {
	var target *EngineViolationError
	return errors.As(err, &target)
}
