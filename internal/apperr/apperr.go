// Package apperr defines the error taxonomy shared by services and the HTTP layer.
package apperr

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeAlreadyVoted    Code = "ALREADY_VOTED"
	CodeNotVoted        Code = "NOT_VOTED"
	CodeInternal        Code = "INTERNAL"
)

// HTTPStatus maps a code onto its response status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidArgument, CodeConflict, CodeAlreadyVoted, CodeNotVoted:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error. Message is safe to show to clients; Cause is not.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Shared errors. errors.Is matches any *Error with the same code.
var (
	ErrUnauthenticated = New(CodeUnauthenticated, "authentication required")
	ErrAlreadyVoted    = New(CodeAlreadyVoted, "you have already upvoted this feedback")
	ErrNotVoted        = New(CodeNotVoted, "you have not upvoted this feedback")
)

func InvalidArgument(message string) *Error { return New(CodeInvalidArgument, message) }
func Forbidden(message string) *Error       { return New(CodeForbidden, message) }
func NotFound(message string) *Error        { return New(CodeNotFound, message) }

// Internal wraps an unexpected failure; the cause is kept for logs only.
func Internal(cause error) *Error {
	return Wrap(CodeInternal, "internal server error", cause)
}

// CodeOf extracts the code of err, defaulting to CodeInternal for unclassified errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// PublicMessage returns the client-facing message for err.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
