package service

import "net/http"

// Status classifies a service failure independent of transport. Handlers
// translate it to an HTTP status code via HTTPStatus.
type Status int

const (
	StatusInternal Status = iota
	StatusBadRequest
	StatusUnauthorized
	StatusForbidden
	StatusNotFound
	StatusConflict
	StatusUnprocessable
)

// Error carries a status, a user-facing message, and an optional
// machine-readable code alongside the wrapped cause.
type Error struct {
	Err     error
	Message string
	Code    string
	Status  Status
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the status to an HTTP status code.
func (e *Error) HTTPStatus() int {
	switch e.Status {
	case StatusBadRequest:
		return http.StatusBadRequest
	case StatusUnauthorized:
		return http.StatusUnauthorized
	case StatusForbidden:
		return http.StatusForbidden
	case StatusNotFound:
		return http.StatusNotFound
	case StatusConflict:
		return http.StatusConflict
	case StatusUnprocessable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ErrorOption configures an Error.
type ErrorOption func(*Error)

// WithCode sets a machine-readable error code for clients.
func WithCode(code string) ErrorOption {
	return func(e *Error) { e.Code = code }
}

// WithCause wraps the underlying error for logging and errors.Is checks.
func WithCause(err error) ErrorOption {
	return func(e *Error) { e.Err = err }
}

func newError(status Status, message string, opts ...ErrorOption) *Error {
	e := &Error{Status: status, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BadRequest reports malformed or missing input.
func BadRequest(message string, opts ...ErrorOption) *Error {
	return newError(StatusBadRequest, message, opts...)
}

// Unauthorized reports that no acting entity could be established.
func Unauthorized(message string, opts ...ErrorOption) *Error {
	return newError(StatusUnauthorized, message, opts...)
}

// Forbidden reports that the actor lacks the required permission.
func Forbidden(message string, opts ...ErrorOption) *Error {
	return newError(StatusForbidden, message, opts...)
}

// NotFound reports a missing record.
func NotFound(message string, opts ...ErrorOption) *Error {
	return newError(StatusNotFound, message, opts...)
}

// Conflict reports a uniqueness or state collision.
func Conflict(message string, opts ...ErrorOption) *Error {
	return newError(StatusConflict, message, opts...)
}

// Unprocessable reports input that parsed but failed validation.
func Unprocessable(message string, opts ...ErrorOption) *Error {
	return newError(StatusUnprocessable, message, opts...)
}

// Internal reports an unexpected failure. The message shown to clients
// stays generic; the cause carries the detail.
func Internal(message string, opts ...ErrorOption) *Error {
	return newError(StatusInternal, message, opts...)
}
