/*
errors.go - Error types for the payroll core

PURPOSE:
  The computation itself is total: once inputs pass shape validation there
  is no error path. What CAN fail is the boundary — malformed dates,
  inverted ranges, shifts that end before they start. Those fail fast here
  with descriptive errors instead of coercing to zero and quietly skewing
  someone's pay.

USAGE:
  Callers branch with errors.Is:

    if errors.Is(err, payroll.ErrInvalidShift) { ... 400 ... }

  and read field-level detail via errors.As on *ValidationError.
*/
package payroll

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPeriod is returned when a period is unset or ends before it starts.
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidShift is returned when a shift interval violates its invariants.
	ErrInvalidShift = errors.New("invalid shift interval")

	// ErrInvalidAmendment is returned when an amendment range is malformed.
	ErrInvalidAmendment = errors.New("invalid amendment range")

	// ErrInvalidDate is returned when a date string cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidHours is returned when an hour quantity is not a number
	// or is negative where it may not be.
	ErrInvalidHours = errors.New("invalid hours value")
)

// =============================================================================
// STRUCTURED ERRORS - Carry field-level context
// =============================================================================

// ValidationError pinpoints which field of which input failed validation.
type ValidationError struct {
	Field  string
	Reason string
	Err    error // sentinel category
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", e.Err, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsClientError reports whether the error is due to invalid input rather
// than an internal failure. The API maps these to 400.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidShift) ||
		errors.Is(err, ErrInvalidAmendment) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidHours)
}
