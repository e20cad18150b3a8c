package youte

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	ECONFLICT = "conflict"
	EINTERNAL = "internal"
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"

	// EQUOTA means the provider refused the call because the daily quota
	// is exhausted. The cursor must be retried after the reset boundary.
	EQUOTA = "quota_exceeded"

	// ESKIPPED marks an item-level soft failure (e.g. comments disabled).
	// The cursor is finished without data.
	ESKIPPED = "item_skipped"

	// ETRANSIENT marks network-level failures that may succeed on retry.
	ETRANSIENT = "transient"

	// EFATAL marks provider rejections that are not retried.
	EFATAL = "fatal_request"

	// EINTERRUPTED means a run stopped on cancellation and can be resumed.
	EINTERRUPTED = "interrupted"

	// ECONFIG marks a malformed ledger, progress or profile file.
	ECONFIG = "configuration"

	// EDECODE marks a response body missing required fields.
	EDECODE = "decode"
)

// Error represents an application-specific error.
type Error struct {
	// Machine-readable error code.
	Code string

	// Human-readable message.
	Message string

	// Provider reason string, e.g. "commentsDisabled", when known.
	Reason string

	// Cursor the failure belongs to, when it is cursor-specific.
	Cursor *PageCursor

	// Underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("youte error: code=%s message=%s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("youte error: code=%s message=%s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError returns an Error with the given code that wraps err.
func WrapError(code string, err error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error"
}

// IsInterrupted reports whether err is the cancellation signal of a run.
func IsInterrupted(err error) bool {
	return ErrorCode(err) == EINTERRUPTED
}
