package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the error type of every restkit package. Code is stable and
// machine-readable; Message is for people.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"` // 0 when no status applies
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return msg
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause records the underlying error.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail adds one entry to Details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, 1)
	}
	e.Details[key] = value
	return e
}

func (e *AppError) withDetails(details map[string]any) *AppError {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// New builds an AppError whose Retryable flag follows IsRetryableCode.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus, Retryable: IsRetryableCode(code)}
}

// Configuration reports a request that cannot be sent as configured.
func Configuration(reason string, details map[string]any) *AppError {
	return New(ErrCodeConfiguration, "Invalid request: "+reason, 0).withDetails(details)
}

// UnsupportedOperation reports an operation that has no meaning for method.
func UnsupportedOperation(operation, method string) *AppError {
	return New(ErrCodeUnsupportedOperation, operation+" is not supported via "+method, 0).
		WithDetail("operation", operation).
		WithDetail("method", method)
}

// TransportUnavailable reports that no transport implementation could be built.
func TransportUnavailable() *AppError {
	return New(ErrCodeTransportUnavailable, "no compatible transport could be constructed", 0)
}

// TransportFailure wraps a network-level error reported by a transport.
func TransportFailure(cause error) *AppError {
	return New(ErrCodeTransportFailure, "transport reported an error", 0).WithCause(cause)
}

// HTTPStatus reports a completed exchange whose status is outside [200, 400).
// payload is the decoded response body. 429 and 5xx are retryable.
func HTTPStatus(status int, payload any) *AppError {
	e := New(ErrCodeHTTPStatus, fmt.Sprintf("HTTP %d", status), status).
		WithDetail("status", status).
		WithDetail("payload", payload)
	e.Retryable = status == http.StatusTooManyRequests || status >= 500
	return e
}

// NotFound reports a missing entity of kind resource. An empty id is omitted
// from Details.
func NotFound(resource, id string) *AppError {
	e := New(ErrCodeNotFound, fmt.Sprintf("The requested %s was not found.", resource), http.StatusNotFound).
		WithDetail("resource", resource)
	if id != "" {
		e.WithDetail("id", id)
	}
	return e
}

// Validation reports rejected input.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

// Internal wraps an unexpected error behind a generic message.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred.", http.StatusInternalServerError).WithCause(cause)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func hasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsConfiguration checks if err is a CONFIGURATION error.
func IsConfiguration(err error) bool { return hasCode(err, ErrCodeConfiguration) }

// IsUnsupportedOperation checks if err is an UNSUPPORTED_OPERATION error.
func IsUnsupportedOperation(err error) bool { return hasCode(err, ErrCodeUnsupportedOperation) }

// IsTransportUnavailable checks if err is a TRANSPORT_UNAVAILABLE error.
func IsTransportUnavailable(err error) bool { return hasCode(err, ErrCodeTransportUnavailable) }

// IsTransportFailure checks if err is a TRANSPORT_FAILURE error.
func IsTransportFailure(err error) bool { return hasCode(err, ErrCodeTransportFailure) }

// IsHTTPStatus checks if err is an HTTP_STATUS error.
func IsHTTPStatus(err error) bool { return hasCode(err, ErrCodeHTTPStatus) }

// IsRetryable checks if err is an AppError marked retryable.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}

// Payload returns the response payload carried by an HTTP_STATUS error.
func Payload(err error) (any, bool) {
	appErr, ok := AsAppError(err)
	if !ok || appErr.Code != ErrCodeHTTPStatus {
		return nil, false
	}
	payload, ok := appErr.Details["payload"]
	return payload, ok
}
