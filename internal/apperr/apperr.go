// Package apperr defines the closed set of error kinds every core operation
// may return. Handlers switch exhaustively over Kind to pick an HTTP status;
// storage-specific failures are wrapped as Unavailable so driver detail never
// leaks past the service layer.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a core error.
type Kind int

const (
	// KindNotFound means the referenced entity does not exist.
	KindNotFound Kind = iota
	// KindForbidden means a role or ownership mismatch.
	KindForbidden
	// KindValidation means malformed input.
	KindValidation
	// KindUnprocessable means valid shape but illegal state (deadline passed, wrong lifecycle status, not enrolled).
	KindUnprocessable
	// KindConflict means a duplicate enrollment or a duplicate non-resubmittable submission.
	KindConflict
	// KindTimeout means the store did not answer within the caller's deadline.
	KindTimeout
	// KindUnavailable means an unexpected store failure.
	KindUnavailable
)

// String returns the kind's wire-level name.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation_error"
	case KindUnprocessable:
		return "unprocessable"
	case KindConflict:
		return "conflict"
	case KindTimeout:
		return "timeout"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Error carries a kind, a caller-facing message and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound builds a KindNotFound error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Forbidden builds a KindForbidden error.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Validation builds a KindValidation error.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Unprocessable builds a KindUnprocessable error.
func Unprocessable(message string) *Error {
	return &Error{Kind: KindUnprocessable, Message: message}
}

// Conflict builds a KindConflict error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Timeout wraps a store deadline failure.
func Timeout(message string, err error) *Error {
	return &Error{Kind: KindTimeout, Message: message, Err: err}
}

// Unavailable wraps an unexpected store failure.
func Unavailable(message string, err error) *Error {
	return &Error{Kind: KindUnavailable, Message: message, Err: err}
}

// KindOf extracts the kind from err. The second return is false when err does
// not carry a core error anywhere in its chain.
func KindOf(err error) (Kind, bool) {
	var coreErr *Error
	if errors.As(err, &coreErr) {
		return coreErr.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// MessageOf returns the caller-facing message, or err.Error() for foreign errors.
func MessageOf(err error) string {
	var coreErr *Error
	if errors.As(err, &coreErr) {
		return coreErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
