package request

import (
	"strings"

	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/transport"
)

// Builder creates requests against a base URL with shared defaults.
type Builder struct {
	base    string
	headers map[string]string
	typ     string
	charset string
	opts    []Option
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithDefaultHeaders sets headers added to every request.
func WithDefaultHeaders(h map[string]string) BuilderOption {
	return func(b *Builder) {
		b.headers = make(map[string]string, len(h))
		for k, v := range h {
			b.headers[k] = v
		}
	}
}

// WithDefaultType sets the type and charset of every request.
func WithDefaultType(typ, charset string) BuilderOption {
	return func(b *Builder) { b.typ, b.charset = typ, charset }
}

// WithRequestOptions passes opts to every request built.
func WithRequestOptions(opts ...Option) BuilderOption {
	return func(b *Builder) { b.opts = append(b.opts, opts...) }
}

// NewBuilder returns a builder rooted at base.
func NewBuilder(base string, opts ...BuilderOption) *Builder {
	b := &Builder{base: base}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewBuilderWith is NewBuilder for a fixed factory and logger.
func NewBuilderWith(base string, f *transport.Factory, l *logger.Logger, opts ...BuilderOption) *Builder {
	opts = append(opts, WithRequestOptions(WithFactory(f), WithLogger(l)))
	return NewBuilder(base, opts...)
}

// Base returns the base URL.
func (b *Builder) Base() string { return b.base }

// Verb builds a request for m against path joined onto the base URL.
func (b *Builder) Verb(m Method, path string) *Request {
	r := New(m, Join(b.base, path), b.opts...)
	if b.typ != "" {
		r.WithType(b.typ)
	}
	if b.charset != "" {
		r.WithCharset(b.charset)
	}
	if len(b.headers) > 0 {
		r.AddHeaders(b.headers)
	}
	return r
}

// verbs binds each method to its builder function once for all builders.
var verbs = map[Method]func(*Builder, string) *Request{
	GET:     (*Builder).Get,
	POST:    (*Builder).Post,
	PUT:     (*Builder).Put,
	PATCH:   (*Builder).Patch,
	DELETE:  (*Builder).Delete,
	OPTIONS: (*Builder).Options,
	HEAD:    (*Builder).Head,
	LINK:    (*Builder).Link,
}

// VerbFunc returns the builder function bound to m, or nil.
func VerbFunc(m Method) func(*Builder, string) *Request {
	return verbs[m]
}

func (b *Builder) Get(path string) *Request     { return b.Verb(GET, path) }
func (b *Builder) Post(path string) *Request    { return b.Verb(POST, path) }
func (b *Builder) Put(path string) *Request     { return b.Verb(PUT, path) }
func (b *Builder) Patch(path string) *Request   { return b.Verb(PATCH, path) }
func (b *Builder) Delete(path string) *Request  { return b.Verb(DELETE, path) }
func (b *Builder) Options(path string) *Request { return b.Verb(OPTIONS, path) }
func (b *Builder) Head(path string) *Request    { return b.Verb(HEAD, path) }
func (b *Builder) Link(path string) *Request    { return b.Verb(LINK, path) }

// Join appends path to base with exactly one slash between them. An empty
// path returns base unchanged and an absolute path URL replaces base.
func Join(base, path string) string {
	switch {
	case path == "":
		return base
	case base == "", strings.Contains(path, "://"):
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
