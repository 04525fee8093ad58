/*
errors.go - Centralized error types for the garnishment engine

PURPOSE:
  All error categories in one place. Calculators return these instead of
  silently producing zero withholdings so a payroll run can never mask a
  missing rule table as "nothing to withhold".

ERROR CATEGORIES:
  1. Configuration errors - a required rule row or table is absent
  2. Permission errors - the garnishment type is not allowed in the state
  3. Data errors - the payroll record is missing required fields
  4. Calculation errors - arithmetic preconditions violated at run time

USAGE:
  Callers branch with errors.Is:

    if garnish.IsNotPermitted(err) {
        // report the order as rejected, not failed
    }

SEE ALSO:
  - priority.go: converts per-type errors into calculation_error entries
  - config.go: raises ConfigNotFoundError from rule lookups
*/
package garnish

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrConfigNotFound is returned when no rule row matches the case.
	ErrConfigNotFound = errors.New("configuration not found")

	// ErrNotPermitted is returned when the state forbids the garnishment type.
	ErrNotPermitted = errors.New("garnishment type not permitted")

	// ErrMissingData is returned when the payroll record lacks a required field.
	ErrMissingData = errors.New("required data missing")

	// ErrCalculation is returned when a calculation precondition fails.
	ErrCalculation = errors.New("calculation failed")

	// ErrInvalidAllocationMethod is returned when a state's support allocation
	// method is neither prorate nor divide equally.
	ErrInvalidAllocationMethod = errors.New("invalid allocation method")

	// ErrUnknownGarnishmentType is returned when no calculator is registered
	// for an order's type.
	ErrUnknownGarnishmentType = errors.New("unknown garnishment type")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigNotFoundError identifies exactly which rule lookup came up empty.
type ConfigNotFoundError struct {
	Table     string
	State     string
	PayPeriod PayPeriod
	Detail    string
}

func (e *ConfigNotFoundError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("no %s rule for state %q pay period %q (%s)",
			e.Table, e.State, e.PayPeriod, e.Detail)
	}
	return fmt.Sprintf("no %s rule for state %q pay period %q",
		e.Table, e.State, e.PayPeriod)
}

func (e *ConfigNotFoundError) Unwrap() error { return ErrConfigNotFound }

// NotPermittedError reports a state that prohibits the garnishment type.
type NotPermittedError struct {
	State string
	Type  GarnishmentType
}

func (e *NotPermittedError) Error() string {
	return fmt.Sprintf("%s garnishment is not permitted in %s", e.Type, e.State)
}

func (e *NotPermittedError) Unwrap() error { return ErrNotPermitted }

// MissingDataError reports an absent or malformed payroll input field.
type MissingDataError struct {
	Field  string
	Detail string
}

func (e *MissingDataError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("missing or invalid %s: %s", e.Field, e.Detail)
	}
	return fmt.Sprintf("missing or invalid %s", e.Field)
}

func (e *MissingDataError) Unwrap() error { return ErrMissingData }

// CalculationError wraps an arithmetic failure with the calculator that hit it.
type CalculationError struct {
	Type   GarnishmentType
	Reason string
	Err    error
}

func (e *CalculationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s calculation failed: %s: %v", e.Type, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s calculation failed: %s", e.Type, e.Reason)
}

func (e *CalculationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrCalculation
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing rule row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrConfigNotFound)
}

// IsNotPermitted returns true if the state forbids the garnishment type.
func IsNotPermitted(err error) bool {
	return errors.Is(err, ErrNotPermitted)
}

// IsClientError returns true if the error is due to invalid case input
// rather than an engine or rule-table fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingData) ||
		errors.Is(err, ErrNotPermitted) ||
		errors.Is(err, ErrUnknownGarnishmentType)
}
