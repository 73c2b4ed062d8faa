package types

import "fmt"

// ErrorCode represents a unified error code across the engine.
type ErrorCode string

// Routing and workflow error codes
const (
	ErrValidation       ErrorCode = "VALIDATION"
	ErrExternalService  ErrorCode = "EXTERNAL_SERVICE"
	ErrRoutingAmbiguity ErrorCode = "ROUTING_AMBIGUITY"
	ErrWorkflowConfig   ErrorCode = "WORKFLOW_CONFIG"
)

// Oracle transport error codes
const (
	ErrOracleUnavailable ErrorCode = "ORACLE_UNAVAILABLE"
	ErrOracleMalformed   ErrorCode = "ORACLE_MALFORMED"
	ErrRateLimited       ErrorCode = "RATE_LIMITED"
	ErrUpstreamTimeout   ErrorCode = "UPSTREAM_TIMEOUT"
	ErrUpstreamError     ErrorCode = "UPSTREAM_ERROR"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	Cause     error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewErrorf creates a new Error with a formatted message.
func NewErrorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}

// IsConfigError reports whether err is a workflow configuration error.
// Configuration errors indicate a programming mistake and are raised
// synchronously, unlike runtime failures which are recorded on state.
func IsConfigError(err error) bool {
	return GetErrorCode(err) == ErrWorkflowConfig
}
