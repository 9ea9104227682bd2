package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Request configuration errors
const (
	// ErrCodeConfiguration indicates a request is missing a valid method or URL.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION"
	// ErrCodeUnsupportedOperation indicates an operation is not defined for a method.
	ErrCodeUnsupportedOperation ErrorCode = "UNSUPPORTED_OPERATION"
)

// Transport errors
const (
	// ErrCodeTransportUnavailable indicates no compatible transport exists.
	ErrCodeTransportUnavailable ErrorCode = "TRANSPORT_UNAVAILABLE"
	// ErrCodeTransportFailure indicates the transport reported a network error.
	ErrCodeTransportFailure ErrorCode = "TRANSPORT_FAILURE"
	// ErrCodeHTTPStatus indicates a completed exchange with a failing status code.
	ErrCodeHTTPStatus ErrorCode = "HTTP_STATUS"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotFound indicates the requested entity was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTransportUnavailable: false,
	ErrCodeTransportFailure:     true,
	ErrCodeConfiguration:        false,
	ErrCodeInternal:             false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
// HTTP_STATUS errors decide per status code; see HTTPStatus.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
