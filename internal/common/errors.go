// Package common holds the error taxonomy and small value types shared
// across the reader's packages.
package common

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a class of error surfaced by the reader.
type ErrorCode int

const (
	// General errors.
	ErrInternal ErrorCode = iota + 1000
	ErrInvalidInput

	// Table discovery (§4.4, §6).
	ErrTableNotFound ErrorCode = iota + 2000

	// Schema model and JSON codec (§4.1).
	ErrInvalidSchema ErrorCode = iota + 3000
	ErrUnsupportedType

	// Action wire codec (§4.2).
	ErrCodec ErrorCode = iota + 4000

	// Log replay engine (§4.3).
	ErrEngineInvariantViolation ErrorCode = iota + 5000

	// Row-over-column adapter (§4.5).
	ErrColumnNotFound ErrorCode = iota + 6000
	ErrTypeMismatch
)

// TableError is the error type returned across package boundaries in this
// module. It carries a stable code so callers can branch on failure class
// without string matching, plus an optional wrapped cause.
type TableError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *TableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *TableError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key/value pair for diagnostics and returns the
// same error for chaining.
func (e *TableError) WithContext(key string, value interface{}) *TableError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a TableError with no cause.
func NewError(code ErrorCode, message string) *TableError {
	return &TableError{Code: code, Message: message}
}

// NewErrorWithCause creates a TableError wrapping an underlying error.
func NewErrorWithCause(code ErrorCode, message string, cause error) *TableError {
	return &TableError{Code: code, Message: message, Cause: cause}
}

// IsErrorCode reports whether err is, or wraps, a *TableError with the
// given code.
func IsErrorCode(err error, code ErrorCode) bool {
	var te *TableError
	if errors.As(err, &te) {
		return te.Code == code
	}
	return false
}

// Constructors for the error surface named in spec §6.

func ErrInvalidInputf(format string, args ...interface{}) *TableError {
	return NewError(ErrInvalidInput, fmt.Sprintf(format, args...))
}

func ErrTableNotFoundf(format string, args ...interface{}) *TableError {
	return NewError(ErrTableNotFound, fmt.Sprintf(format, args...))
}

func ErrInvalidSchemaf(format string, args ...interface{}) *TableError {
	return NewError(ErrInvalidSchema, fmt.Sprintf(format, args...))
}

func ErrUnsupportedTypef(format string, args ...interface{}) *TableError {
	return NewError(ErrUnsupportedType, fmt.Sprintf(format, args...))
}

func ErrCodecf(format string, args ...interface{}) *TableError {
	return NewError(ErrCodec, fmt.Sprintf(format, args...))
}

func ErrEngineInvariantViolationf(format string, args ...interface{}) *TableError {
	return NewError(ErrEngineInvariantViolation, fmt.Sprintf(format, args...))
}

// ErrColumnNotFoundf builds the ColumnNotFound(name) error from spec §6.
func ErrColumnNotFoundf(name string) *TableError {
	return NewError(ErrColumnNotFound, fmt.Sprintf("column not found: %s", name)).
		WithContext("column", name)
}

// ErrTypeMismatchf builds the TypeMismatch(name, expected, actual) error
// from spec §6.
func ErrTypeMismatchf(name, expected, actual string) *TableError {
	return NewError(ErrTypeMismatch, fmt.Sprintf("column %s: expected %s, got %s", name, expected, actual)).
		WithContext("column", name).
		WithContext("expected", expected).
		WithContext("actual", actual)
}
