/*
errors.go - Centralized error types for the recurring engine

PURPOSE:
  All error types in one place. The API layer maps these to HTTP status
  codes via the classification helpers at the bottom.

ERROR CATEGORIES:
  1. Validation errors - rejected before any state change, naming the field
  2. Referential errors - unknown template/payment/pause IDs
  3. Conflict errors - duplicate payment for a natural key

  Data-quality conditions (overlapping pauses, a payment in a paused
  period, duplicate PAID rows) are deliberately NOT errors: the forecast
  must always render a best-effort view. They are logged by the aggregator
  instead.

USAGE:
  if errors.Is(err, recurring.ErrTemplateNotFound) { ... }

  var fieldErr *recurring.FieldError
  if errors.As(err, &fieldErr) {
      // fieldErr.Field names the offending input
  }
*/
package recurring

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrTemplateNotFound is returned when a referenced template doesn't exist.
	ErrTemplateNotFound = errors.New("recurring expense not found")

	// ErrPaymentNotFound is returned when a referenced payment doesn't exist.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrPauseNotFound is returned when a referenced pause doesn't exist.
	ErrPauseNotFound = errors.New("pause not found")

	// ErrDuplicatePayment is returned when creating a payment for a natural
	// key that already has a PAID row. Moves bypass this check on purpose.
	ErrDuplicatePayment = errors.New("payment already exists for period")

	// ErrValidation is the root of all input validation failures.
	ErrValidation = errors.New("validation failed")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// FieldError names the offending input field, per the validation contract.
type FieldError struct {
	Field  string
	Value  any
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

// NotFoundError carries which kind of resource was missing.
type NotFoundError struct {
	Kind string // "recurring_expense", "payment", "pause"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	switch e.Kind {
	case "payment":
		return ErrPaymentNotFound
	case "pause":
		return ErrPauseNotFound
	default:
		return ErrTemplateNotFound
	}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrPauseNotFound)
}

// IsConflict returns true if the error indicates a natural-key conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicatePayment)
}
