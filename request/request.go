package request

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/negotiate"
	"github.com/kbukum/restkit/transport"
	"github.com/kbukum/restkit/validation"
)

// Negotiation defaults.
const (
	DefaultType    = negotiate.TypeJSON
	DefaultCharset = "UTF-8"
)

const contentTypeHeader = "Content-Type"

// Field is an ordered query or form pair.
type Field = negotiate.Field

// F builds a Field.
func F(key string, value any) Field {
	return negotiate.F(key, value)
}

// Response records the outcome of the last completed exchange. Exactly one
// of Success and Error is meaningful, as reported by OK.
type Response struct {
	OK      bool
	Status  int
	Success any
	Error   any
}

// Request is one outbound HTTP call. It is not safe for concurrent
// mutation; create a new Request per logical call.
type Request struct {
	id      string
	method  Method
	url     string
	body    any
	headers map[string]string
	// synthesized is true while headers["Content-Type"] was written by the
	// type setter rather than by the caller.
	synthesized bool
	query       string
	typ         string
	charset     string

	mu       sync.Mutex
	response *Response

	factory *transport.Factory
	log     *logger.Logger
}

// Option configures a Request at construction.
type Option func(*Request)

// WithFactory sets the transport factory used when Send is given no
// transport.
func WithFactory(f *transport.Factory) Option {
	return func(r *Request) { r.factory = f }
}

// WithLogger sets the request logger.
func WithLogger(l *logger.Logger) Option {
	return func(r *Request) { r.log = l }
}

// New creates a Request. An invalid method or url is ignored, leaving the
// field unset.
func New(method Method, url string, opts ...Option) *Request {
	r := &Request{
		id:      uuid.NewString(),
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.WithComponent("request")
	}
	r.SetMethod(method)
	r.SetURL(url)
	return r
}

// ID identifies the request in logs and spans.
func (r *Request) ID() string { return r.id }

// --- accessors ---

func (r *Request) URL() string    { return r.url }
func (r *Request) Method() Method { return r.method }
func (r *Request) Body() any      { return r.body }

// Query returns the encoded query string, "" when never set.
func (r *Request) Query() string { return r.query }

// Type returns the MIME type, DefaultType when never set.
func (r *Request) Type() string {
	if r.typ == "" {
		return DefaultType
	}
	return r.typ
}

// Charset returns the charset, DefaultCharset when never set.
func (r *Request) Charset() string {
	if r.charset == "" {
		return DefaultCharset
	}
	return r.charset
}

// ContentType returns the synthesized Content-Type value.
func (r *Request) ContentType() string {
	return negotiate.ContentType(r.Type(), r.Charset())
}

// Headers returns the headers to send: the synthesized Content-Type with
// the explicit headers layered on top. Header names compare
// case-insensitively, as HTTP defines them, so an explicit content-type
// under any casing replaces the synthesized entry rather than sitting
// beside it.
func (r *Request) Headers() map[string]string {
	out := make(map[string]string, len(r.headers)+1)
	explicit := false
	for k, v := range r.headers {
		out[k] = v
		if strings.EqualFold(k, contentTypeHeader) {
			explicit = true
		}
	}
	if !explicit {
		out[contentTypeHeader] = r.ContentType()
	}
	return out
}

// Response returns the outcome of the last completed exchange, nil before
// any exchange completed.
func (r *Request) Response() *Response {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.response == nil {
		return nil
	}
	resp := *r.response
	return &resp
}

func (r *Request) record(resp Response) {
	r.mu.Lock()
	r.response = &resp
	r.mu.Unlock()
}

// --- validated setters ---

// SetURL stores u if it satisfies the URL-shape grammar and reports
// whether it did.
func (r *Request) SetURL(u string) bool {
	if !validation.IsURL(u) {
		return false
	}
	r.url = u
	return true
}

// SetMethod stores m if it is an accepted verb and reports whether it did.
func (r *Request) SetMethod(m Method) bool {
	if !m.Valid() {
		return false
	}
	r.method = m
	return true
}

// --- chainable mutators ---

// WithURL sets the url, ignoring invalid values.
func (r *Request) WithURL(u string) *Request {
	r.SetURL(u)
	return r
}

// WithMethod sets the method, ignoring invalid values.
func (r *Request) WithMethod(m Method) *Request {
	r.SetMethod(m)
	return r
}

// WithBody stores b verbatim. Strings switch the type to text/plain and
// structured values to application/json; the caller may override the type
// afterwards.
func (r *Request) WithBody(b any) *Request {
	r.body = b
	if t, ok := negotiate.Infer(b); ok {
		r.setType(t)
	}
	return r
}

// WithHeader sets one explicit header. Setting Content-Type under any
// casing drops the entry held under another casing.
func (r *Request) WithHeader(field, value string) *Request {
	if strings.EqualFold(field, contentTypeHeader) {
		r.synthesized = false
		dropContentType(r.headers, field)
	}
	r.headers[field] = value
	return r
}

// WithHeaders replaces the explicit header store with h.
func (r *Request) WithHeaders(h map[string]string) *Request {
	r.headers = make(map[string]string, len(h))
	r.synthesized = false
	for k, v := range h {
		r.headers[k] = v
	}
	return r
}

// AddHeaders merges h into the explicit header store.
func (r *Request) AddHeaders(h map[string]string) *Request {
	for k, v := range h {
		r.WithHeader(k, v)
	}
	return r
}

// WithQuery encodes fields, in order, into the query string.
func (r *Request) WithQuery(fields ...Field) *Request {
	r.query = negotiate.Encode(fields)
	return r
}

// WithQueryMap encodes m into the query string with keys sorted.
func (r *Request) WithQueryMap(m map[string]any) *Request {
	return r.WithQuery(negotiate.SortedFields(m)...)
}

// WithType sets the MIME type and keeps the Content-Type header in step.
func (r *Request) WithType(t string) *Request {
	if t == "" {
		t = DefaultType
	}
	r.setType(t)
	return r
}

// WithCharset sets the charset.
func (r *Request) WithCharset(c string) *Request {
	if c == "" {
		c = DefaultCharset
	}
	r.charset = c
	if r.synthesized {
		r.headers[contentTypeHeader] = r.ContentType()
	}
	return r
}

func (r *Request) setType(t string) {
	r.typ = t
	dropContentType(r.headers, contentTypeHeader)
	r.headers[contentTypeHeader] = r.ContentType()
	r.synthesized = true
}

// dropContentType deletes Content-Type entries of h other than keep.
func dropContentType(h map[string]string, keep string) {
	for k := range h {
		if k != keep && strings.EqualFold(k, contentTypeHeader) {
			delete(h, k)
		}
	}
}

// Form shapes fields for the current method: a multipart body for POST and
// PUT, the query string for GET. Any other method is unsupported.
func (r *Request) Form(fields ...Field) (*Request, error) {
	switch r.method {
	case POST, PUT:
		r.WithBody(negotiate.NewFormData(fields...))
		r.setType(negotiate.TypeMultipart)
	case GET:
		r.WithQuery(fields...)
		r.setType(negotiate.TypeForm)
	default:
		method := string(r.method)
		if method == "" {
			method = "an unset method"
		}
		return r, errors.UnsupportedOperation("form", method)
	}
	return r, nil
}

// FormMap is Form with the map's keys sorted.
func (r *Request) FormMap(m map[string]any) (*Request, error) {
	return r.Form(negotiate.SortedFields(m)...)
}

// sortedHeaders returns header names in a stable order for the transport.
func sortedHeaders(h map[string]string) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
