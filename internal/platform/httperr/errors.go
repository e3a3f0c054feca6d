package httperr

import (
	"fmt"
	"net/http"
)

// Error codes used across the API.
const (
	CodeValidation   = "validation_error"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeUpstream     = "upstream_error"
	CodeRateLimited  = "rate_limited"
	CodeInternal     = "internal_error"
)

// Error is an application error carrying an HTTP status, a stable code and
// an optional map of field-level validation messages.
type Error struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"errors,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// WithCause attaches an underlying error for logging without exposing it to
// the client.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// Validation returns a 400 error with per-field messages.
func Validation(fields map[string]string) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    CodeValidation,
		Message: "validation failed",
		Fields:  fields,
	}
}

// BadRequest returns a 400 error with a single message.
func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeValidation, Message: message}
}

// Unauthorized returns a 401 error.
func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: message}
}

// Forbidden returns a 403 error.
func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Code: CodeForbidden, Message: message}
}

// NotFound returns a 404 error.
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: message}
}

// Conflict returns a 400 error for duplicate-key violations. The original
// API reports duplicates as a plain bad request rather than a 409.
func Conflict(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeConflict, Message: message}
}

// Upstream returns a 502 error for failures of an external dependency.
func Upstream(message string, cause error) *Error {
	return &Error{Status: http.StatusBadGateway, Code: CodeUpstream, Message: message, cause: cause}
}

// Internal returns a 500 error wrapping an unexpected failure.
func Internal(cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "internal server error", cause: cause}
}
