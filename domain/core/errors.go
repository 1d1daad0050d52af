package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Schema errors: the dataset does not match the declared schema
	ErrSchema        = errors.New("schema violation")
	ErrMissingColumn = fmt.Errorf("%w: required column missing", ErrSchema)
	ErrColumnType    = fmt.Errorf("%w: column mistyped", ErrSchema)
	ErrUnknownLevel  = fmt.Errorf("%w: value outside declared levels", ErrSchema)

	// Estimation errors
	ErrConvergence      = errors.New("model failed to converge")
	ErrSingularMatrix   = errors.New("singular design matrix")
	ErrDegenerateWeight = errors.New("degenerate propensity weight")
	ErrInsufficientData = errors.New("insufficient data for analysis")
)

// Error constructors with context
func NewMissingColumnError(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingColumn, name)
}

func NewColumnTypeError(name string, reason string) error {
	return fmt.Errorf("%w: %s (%s)", ErrColumnType, name, reason)
}

func NewUnknownLevelError(column string, value string) error {
	return fmt.Errorf("%w: column %s has value %q", ErrUnknownLevel, column, value)
}

func NewConvergenceError(model string, iterations int) error {
	return fmt.Errorf("%w: %s after %d iterations", ErrConvergence, model, iterations)
}

func NewDegenerateWeightError(row int, propensity float64) error {
	return fmt.Errorf("%w: row %d has propensity %g", ErrDegenerateWeight, row, propensity)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// Error checking helpers
func IsSchemaError(err error) bool {
	return errors.Is(err, ErrSchema)
}

func IsConvergenceError(err error) bool {
	return errors.Is(err, ErrConvergence)
}

func IsDegenerateWeightError(err error) bool {
	return errors.Is(err, ErrDegenerateWeight)
}

func IsSingularMatrixError(err error) bool {
	return errors.Is(err, ErrSingularMatrix)
}
