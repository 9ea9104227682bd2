// Package errors provides the structured error type shared by every restkit
// package.
//
// Each failure a request can produce is an *AppError carrying a
// machine-readable ErrorCode:
//
//   - CONFIGURATION: a request was sent without a valid method or URL.
//     Returned synchronously by Request.Send.
//   - UNSUPPORTED_OPERATION: an operation has no semantics for the request's
//     method (for example a form on DELETE).
//   - TRANSPORT_UNAVAILABLE: no compatible transport could be constructed.
//   - TRANSPORT_FAILURE: the transport reported a network-level error. The
//     transport's own error is kept as Cause.
//   - HTTP_STATUS: the exchange completed with a status outside [200, 400).
//     The decoded response payload is kept in Details["payload"].
//
// Retryable is informational only; nothing in restkit retries.
package errors
