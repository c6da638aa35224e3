// Package errors provides structured application errors for the gateway.
package errors

import (
	"fmt"
	"net/http"
)

// Error codes returned to clients.
const (
	CodeUpdateRequired      = "UPDATE_REQUIRED"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeInternal            = "INTERNAL_ERROR"
)

// AppError is a structured application error with HTTP status and error code.
type AppError struct {
	// Code is a machine-readable error code (e.g., "UPSTREAM_UNAVAILABLE").
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// HTTPStatus is the corresponding HTTP status code.
	HTTPStatus int `json:"-"`

	// Err is the wrapped underlying error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with the given code, message and HTTP status.
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap creates an AppError wrapping an underlying error.
func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ErrUpstreamNotConfigured signals that the gateway has no backend to
// forward to. Gated routes answer with this until upstream.url is set.
func ErrUpstreamNotConfigured() *AppError {
	return New(CodeUpstreamUnavailable, "no upstream backend configured", http.StatusBadGateway)
}

// ErrUpstreamUnavailable wraps a transport failure talking to the backend.
func ErrUpstreamUnavailable(err error) *AppError {
	return Wrap(err, CodeUpstreamUnavailable, "upstream backend is unavailable", http.StatusBadGateway)
}
