// Package errors provides structured error types for bentogrid.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, TUI and HTTP server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The taxonomy mirrors the failure modes of the grid engine:
//   - NOT_FOUND: an operation referenced a tile id (or stored key) that does not exist
//   - MALFORMED_DOCUMENT: a persisted document could not be decoded or validated
//   - IMAGE_DECODE: an uploaded image could not be decoded
//   - LAYOUT_SYNC: the layout engine rejected a sync call (non-fatal)
//   - INVALID_INPUT, INVALID_CONFIG, STORE_ERROR: everything around the core
//
// None of these are fatal. Every failure leaves the tile collection in its
// last valid state.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "tile %d not found", id)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // Handle missing tile
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMalformedDocument, origErr, "decode document")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Grid engine errors
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeMalformedDocument Code = "MALFORMED_DOCUMENT"
	ErrCodeImageDecode       Code = "IMAGE_DECODE"
	ErrCodeLayoutSync        Code = "LAYOUT_SYNC"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Persistence errors
	ErrCodeStore Code = "STORE_ERROR"

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
// It unwraps the error chain looking for an *Error with a matching code.
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

// NotFound returns a NOT_FOUND error for a tile id.
func NotFound(id int) *Error {
	return New(ErrCodeNotFound, "tile %d not found", id)
}

// Malformed returns a MALFORMED_DOCUMENT error with an optional cause.
func Malformed(cause error, format string, args ...any) *Error {
	return Wrap(ErrCodeMalformedDocument, cause, format, args...)
}
