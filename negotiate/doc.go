// Package negotiate holds the pure content-negotiation functions behind
// restkit requests: inferring a MIME type from a body, formatting the
// Content-Type header, decoding payloads by MIME type, percent-encoding
// query strings, and serializing bodies onto the wire.
//
// Nothing here performs I/O or keeps state. Unknown MIME types are passed
// through unchanged rather than treated as errors.
package negotiate
