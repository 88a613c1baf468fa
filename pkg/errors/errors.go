// Package errors gives klotskigraph failures a machine-readable [Code].
//
// Codes group by where the failure comes from:
//   - INVALID_*: bad pieces, boards, puzzle files or paths
//   - COLLISION_INVARIANT: overlapping pieces inside a state
//   - EXPLORATION_LIMIT: the explorer hit its node or edge ceiling
//   - INVALID_FORMAT, UNSUPPORTED_VERSION, TRUNCATED: packed-format decode failures
//   - VALUE_OVERFLOW: a value does not fit its packed field
//
// Enumeration and packing are pure functions of their input, so none of
// these are retried.
//
//	err := errors.New(errors.ErrCodeInvalidPiece, "piece %d: width must be positive", id)
//	if errors.Is(err, errors.ErrCodeInvalidPiece) {
//	    ...
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
	ErrCodeInvalidPiece  Code = "INVALID_PIECE"
	ErrCodeInvalidBoard  Code = "INVALID_BOARD"
	ErrCodeInvalidPuzzle Code = "INVALID_PUZZLE"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Search errors
	ErrCodeCollision     Code = "COLLISION_INVARIANT"
	ErrCodeLimitExceeded Code = "EXPLORATION_LIMIT"

	// Packed format errors
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeUnsupportedVersion Code = "UNSUPPORTED_VERSION"
	ErrCodeTruncated          Code = "TRUNCATED"
	ErrCodeOverflow           Code = "VALUE_OVERFLOW"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error pairs a Code with a message for the user and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns an Error without a cause.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap returns an Error whose message is followed by cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether the outermost *Error in err's chain carries code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsFormatError reports whether err is any of the packed-format decode
// failures: bad magic, unsupported version or a truncated buffer.
func IsFormatError(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidFormat, ErrCodeUnsupportedVersion, ErrCodeTruncated:
		return true
	}
	return false
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage strips the code prefix for display. Errors without a code are
// returned as they print.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// LimitExceededError carries the counters that tripped the explorer's
// safety ceiling. It unwraps to an *Error with ErrCodeLimitExceeded.
type LimitExceededError struct {
	What  string // "nodes" or "edges"
	Limit int
	Seen  int
}

// Error implements the error interface.
func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("%s: %s ceiling %d exceeded (seen %d)", ErrCodeLimitExceeded, e.What, e.Limit, e.Seen)
}

// Unwrap exposes the coded form so Is(err, ErrCodeLimitExceeded) matches.
func (e *LimitExceededError) Unwrap() error {
	return New(ErrCodeLimitExceeded, "%s ceiling %d exceeded", e.What, e.Limit)
}

// Code returns the error code for this error type.
func (e *LimitExceededError) Code() Code {
	return ErrCodeLimitExceeded
}
