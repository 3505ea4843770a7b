// Package errors provides structured error types for tilerow.
//
// Every failure the loading pipeline can observe is classified with a
// machine-readable [Code] so callers can decide, at the point of occurrence,
// whether to skip a tile, degrade a row, or abort the session:
//   - NETWORK_ERROR, NOT_FOUND: a remote resource could not be reached
//   - DECODE_ERROR: bytes arrived but were not a valid image
//   - SCHEMA_MISMATCH: an expected JSON field was absent
//   - REFSET_RESOLUTION: a refset document had no usable item list
//   - CATALOG_UNAVAILABLE: the root catalog could not be fetched or parsed
//
// Only CATALOG_UNAVAILABLE is fatal; everything else is recovered locally.
//
// # Usage
//
//	err := errors.Wrap(errors.ErrCodeDecode, cause, "bad image %s", url)
//	if errors.Is(err, errors.ErrCodeDecode) {
//	    // skip this tile
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidRefset Code = "INVALID_REFSET"

	// Remote resource errors
	ErrCodeNetwork  Code = "NETWORK_ERROR"
	ErrCodeNotFound Code = "NOT_FOUND"

	// Content errors
	ErrCodeDecode             Code = "DECODE_ERROR"
	ErrCodeSchemaMismatch     Code = "SCHEMA_MISMATCH"
	ErrCodeRefsetResolution   Code = "REFSET_RESOLUTION"
	ErrCodeCatalogUnavailable Code = "CATALOG_UNAVAILABLE"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It checks the outermost *Error in the chain.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
