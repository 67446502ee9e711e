package stockgenius

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode defines error classification codes for structured error handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodeInvalidInput        ErrorCode = "INVALID_INPUT"
	ErrCodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeTimeout             ErrorCode = "TIMEOUT"
	ErrCodeSimulationFailure   ErrorCode = "SIMULATION_FAILURE"
	ErrCodeReportGeneration    ErrorCode = "REPORT_GENERATION_FAILURE"
	ErrCodeDatabase            ErrorCode = "DATABASE_ERROR"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// Error represents a structured error with classification code.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with classification code and additional context.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// IsErrorCode checks if an error (or anything it wraps) carries a specific error code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the classification code of err, or ErrCodeInternal for unclassified errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

func invalidInputf(format string, args ...any) *Error {
	return NewError(ErrCodeInvalidInput, fmt.Sprintf(format, args...))
}

// upstreamError classifies a collaborator failure: deadline expiry becomes a timeout,
// everything else collapses to "upstream unavailable".
func upstreamError(message string, err error) *Error {
	var e *Error
	if errors.As(err, &e) && (e.Code == ErrCodeTimeout || e.Code == ErrCodeUpstreamUnavailable) {
		return WrapError(e.Code, message, err)
	}
	if isTimeoutError(err) {
		return WrapError(ErrCodeTimeout, message, err)
	}
	return WrapError(ErrCodeUpstreamUnavailable, message, err)
}

func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}
