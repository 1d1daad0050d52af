package errors

import (
	stderrors "errors"
	"fmt"

	"aline/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeFor(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if it's an AppError, otherwise maps
// the domain sentinel
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return CodeFor(err)
}

// Predefined error codes
const (
	CodeSchemaError      = "SCHEMA_ERROR"
	CodeConvergence      = "CONVERGENCE_ERROR"
	CodeDegenerateWeight = "DEGENERATE_WEIGHT"
	CodeSingularMatrix   = "SINGULAR_MATRIX"
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeInternalError    = "INTERNAL_ERROR"
)

// CodeFor maps domain sentinel errors onto application codes.
func CodeFor(err error) string {
	switch {
	case err == nil:
		return ""
	case core.IsSchemaError(err):
		return CodeSchemaError
	case core.IsConvergenceError(err):
		return CodeConvergence
	case core.IsDegenerateWeightError(err):
		return CodeDegenerateWeight
	case core.IsSingularMatrixError(err):
		return CodeSingularMatrix
	case stderrors.Is(err, core.ErrInsufficientData):
		return CodeInvalidInput
	default:
		return CodeInternalError
	}
}

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}
