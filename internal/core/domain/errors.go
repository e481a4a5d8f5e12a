package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind tags an error with its place in the closed taxonomy.
// The HTTP boundary maps each kind to exactly one status family;
// services never pick transport statuses themselves.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindAuthorization
	KindInternal
)

// Error is the single error type crossing the service boundary
type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status for the error kind
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Validation returns a 400-class input error
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a 404-class error for an absent entity
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict returns a 409-class error for a duplicate active record
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Authorization returns a 403-class error for a role/permission mismatch
func Authorization(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected store or transaction failure.
// The boundary logs the cause and returns a generic message to the caller.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// AsError extracts a *Error from err, wrapping unknown errors as internal
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return Internal(err)
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}
