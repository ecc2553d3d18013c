// Package errors defines the domain error type shared by the store,
// the import/export pipelines, and the HTTP surface. Every error
// carries a machine-readable code that maps to an HTTP status.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Stdlib re-exports so callers import one errors package.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code is a machine-readable error category.
type Code string

const (
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeValidation    Code = "VALIDATION"
	CodeConflict      Code = "CONFLICT"
	CodeInternal      Code = "INTERNAL"
)

// HTTPStatus maps a code to its response status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists, CodeConflict:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a coded domain error with an optional details payload and
// an optional wrapped cause.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same code, so sentinels below work
// with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	return errors.As(target, &t) && e.Code == t.Code
}

// HTTPStatus returns the response status for this error's code.
func (e *Error) HTTPStatus() int { return e.Code.HTTPStatus() }

// WithDetails returns a copy carrying a details payload.
func (e *Error) WithDetails(details any) *Error {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy wrapping an underlying error.
func (e *Error) WithCause(err error) *Error {
	c := *e
	c.cause = err
	return &c
}

// Sentinels for errors.Is checks by category.
var (
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict      = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInternal      = &Error{Code: CodeInternal, Message: "internal error"}
)

func newError(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func newErrorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func NotFound(msg string) *Error      { return newError(CodeNotFound, msg) }
func AlreadyExists(msg string) *Error { return newError(CodeAlreadyExists, msg) }
func Validation(msg string) *Error    { return newError(CodeValidation, msg) }
func Conflict(msg string) *Error      { return newError(CodeConflict, msg) }
func Internal(msg string) *Error      { return newError(CodeInternal, msg) }

func NotFoundf(format string, args ...any) *Error {
	return newErrorf(CodeNotFound, format, args...)
}

func AlreadyExistsf(format string, args ...any) *Error {
	return newErrorf(CodeAlreadyExists, format, args...)
}

func Validationf(format string, args ...any) *Error {
	return newErrorf(CodeValidation, format, args...)
}

func Conflictf(format string, args ...any) *Error {
	return newErrorf(CodeConflict, format, args...)
}

func Internalf(format string, args ...any) *Error {
	return newErrorf(CodeInternal, format, args...)
}

// ValidationWithDetails builds a validation error with a details
// payload, typically the per-field error list.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
