package request

import (
	"reflect"
	"strings"

	"github.com/kbukum/restkit/validation"
)

// Descriptor is a plain description of a request, as read from JSON, YAML
// or the command line.
type Descriptor struct {
	Method  string            `json:"method" yaml:"method" mapstructure:"method" validate:"required,httpmethod"`
	URL     string            `json:"url" yaml:"url" mapstructure:"url" validate:"required,urlshape"`
	Body    any               `json:"body,omitempty" yaml:"body" mapstructure:"body"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers" mapstructure:"headers"`
	Query   map[string]any    `json:"query,omitempty" yaml:"query" mapstructure:"query"`
	Type    string            `json:"type,omitempty" yaml:"type" mapstructure:"type"`
	Charset string            `json:"charset,omitempty" yaml:"charset" mapstructure:"charset"`
}

// Validate reports every invalid field of d.
func (d Descriptor) Validate() error {
	return validation.Validate(d)
}

// FromDescriptor builds a Request from d through the regular setters, so
// invalid values are ignored exactly as they are when chaining.
func FromDescriptor(d Descriptor, opts ...Option) *Request {
	r := New(Method(d.Method), d.URL, opts...)
	if d.Body != nil {
		r.WithBody(d.Body)
	}
	if d.Headers != nil {
		r.AddHeaders(d.Headers)
	}
	if d.Query != nil {
		r.WithQueryMap(d.Query)
	}
	if d.Type != "" {
		r.WithType(d.Type)
	}
	if d.Charset != "" {
		r.WithCharset(d.Charset)
	}
	return r
}

// Descriptor snapshots the request's current field values.
func (r *Request) Descriptor() Descriptor {
	d := Descriptor{
		Method:  string(r.method),
		URL:     r.url,
		Body:    r.body,
		Type:    r.Type(),
		Charset: r.Charset(),
	}
	if len(r.headers) > 0 {
		d.Headers = make(map[string]string, len(r.headers))
		for k, v := range r.headers {
			d.Headers[k] = v
		}
	}
	return d
}

var requestType = reflect.TypeOf((*Request)(nil))

var simple = func() map[string]string {
	out := make(map[string]string)
	for i := 0; i < requestType.NumMethod(); i++ {
		m := requestType.Method(i)
		if m.Type.NumOut() == 0 || m.Type.Out(0) != requestType {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(m.Name, "With"))
		out[key] = m.Name
	}
	return out
}()

// Simple lists the chainable capabilities of a Request, keyed by name with
// the With prefix stripped and mapped to the method that implements it.
func (r *Request) Simple() map[string]string {
	out := make(map[string]string, len(simple))
	for k, v := range simple {
		out[k] = v
	}
	return out
}
