package types

import "fmt"

// ErrorCode represents a unified error code across the service.
type ErrorCode string

// Input error codes: the caller's request is malformed or incomplete.
const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrMissingInput   ErrorCode = "MISSING_INPUT"
	ErrMissingHandle  ErrorCode = "MISSING_HANDLE"
	ErrMissingID      ErrorCode = "MISSING_ID"
	ErrBadSignature   ErrorCode = "BAD_SIGNATURE"
	ErrMalformedEvent ErrorCode = "MALFORMED_EVENT"
)

// State error codes: the operation is invalid for the current lifecycle state.
const (
	ErrNotPaid  ErrorCode = "NOT_PAID"
	ErrNotFound ErrorCode = "NOT_FOUND"
)

// Upstream error codes: the document processor or payment gateway failed.
const (
	ErrProcessingFailed   ErrorCode = "PROCESSING_FAILED"
	ErrPaymentSetupFailed ErrorCode = "PAYMENT_SETUP_FAILED"
	ErrGatewayError       ErrorCode = "GATEWAY_ERROR"
	ErrUpstreamTimeout    ErrorCode = "UPSTREAM_TIMEOUT"
)

// Invariant error codes: should never occur; seeing one indicates a bug.
const (
	ErrDuplicateID   ErrorCode = "DUPLICATE_ID"
	ErrInternalError ErrorCode = "INTERNAL_ERROR"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Cause      error     `json:"-"`
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

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// AsError converts any error to *Error. Non-structured errors are wrapped
// as internal errors.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return NewError(ErrInternalError, "internal error").WithCause(err)
}

// IsErrorCode reports whether err is a *Error carrying the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == code
	}
	return false
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

// IsInputError reports whether the code belongs to the input error class.
func IsInputError(code ErrorCode) bool {
	switch code {
	case ErrInvalidRequest, ErrMissingInput, ErrMissingHandle, ErrMissingID,
		ErrBadSignature, ErrMalformedEvent:
		return true
	}
	return false
}

// IsUpstreamError reports whether the code belongs to the upstream error class.
func IsUpstreamError(code ErrorCode) bool {
	switch code {
	case ErrProcessingFailed, ErrPaymentSetupFailed, ErrGatewayError, ErrUpstreamTimeout:
		return true
	}
	return false
}
