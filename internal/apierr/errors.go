// Package apierr defines the typed error taxonomy returned in the HTTP
// response envelope, mirroring the plain status-code-plus-message
// errors the control surface this was adapted from used, but with a
// stable machine-readable code attached to each one.
package apierr

import "net/http"

// Code identifies a class of API error.
type Code string

const (
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeSessionNotFound   Code = "SESSION_NOT_FOUND"
	CodeAnalysisNotReady  Code = "ANALYSIS_NOT_READY"
	CodeRateLimitExceeded Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal          Code = "INTERNAL_ERROR"
)

// httpStatus maps each Code to the response status it produces.
var httpStatus = map[Code]int{
	CodeValidation:        http.StatusBadRequest,
	CodeSessionNotFound:   http.StatusNotFound,
	CodeAnalysisNotReady:  http.StatusConflict,
	CodeRateLimitExceeded: http.StatusTooManyRequests,
	CodeInternal:          http.StatusInternalServerError,
}

// FieldDetail describes a single field-level validation failure.
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the typed error carried through handlers and rendered into
// the response envelope's "error" object.
type Error struct {
	Code    Code          `json:"code"`
	Message string        `json:"message"`
	Details []FieldDetail `json:"details,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// HTTPStatus returns the status code the envelope writer should use.
func (e *Error) HTTPStatus() int {
	if status, ok := httpStatus[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// New builds a plain Error with no field details.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Validation builds a VALIDATION_ERROR carrying per-field details.
func Validation(message string, details ...FieldDetail) *Error {
	return &Error{Code: CodeValidation, Message: message, Details: details}
}

// SessionNotFound builds a SESSION_NOT_FOUND error for the given ID.
func SessionNotFound(sessionID string) *Error {
	return New(CodeSessionNotFound, "session not found: "+sessionID)
}

// AnalysisNotReady builds an ANALYSIS_NOT_READY error for the given session.
func AnalysisNotReady(sessionID string) *Error {
	return New(CodeAnalysisNotReady, "analysis not yet available for session: "+sessionID)
}

// RateLimitExceeded builds a RATE_LIMIT_EXCEEDED error.
func RateLimitExceeded() *Error {
	return New(CodeRateLimitExceeded, "rate limit exceeded, retry later")
}

// Internal wraps an unexpected internal failure without leaking details.
func Internal() *Error {
	return New(CodeInternal, "internal server error")
}

// As extracts an *Error from err, falling back to a generic internal
// error when err is not already one.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	if apiErr, ok := err.(*Error); ok {
		return apiErr
	}
	return Internal()
}
