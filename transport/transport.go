package transport

import "context"

// Transport is one network exchange. Callers Open it, set headers, register
// completion hooks and Send exactly once. Exactly one of the hooks fires per
// Send. Status and the response accessors are meaningful once OnLoad fired.
type Transport interface {
	Open(method, url string, async bool) error
	SetRequestHeader(field, value string)
	OnLoad(fn func())
	OnError(fn func(error))
	Send(body any) error

	Status() int
	Response() any
	ResponseText() string
	ResponseHeader(name string) string
}

// ContextBinder is implemented by transports that can tie an exchange to a
// context. Cancelling the context surfaces through OnError.
type ContextBinder interface {
	BindContext(ctx context.Context)
}

// Events lists the XHR lifecycle hooks. Only onload and onerror are driven.
var Events = []string{"onloadstart", "onprogress", "onabort", "onerror", "onload", "ontimeout", "onloadend"}

// LegacyIdentifiers is the ordered compatibility fallback list consulted
// when no native transport can be constructed.
var LegacyIdentifiers = []string{
	"MSXML2.XmlHttp.2.0",
	"MSXML2.XmlHttp.3.0",
	"MSXML2.XmlHttp.4.0",
	"MSXML2.XmlHttp.5.0",
	"Microsoft.XmlHttp",
}
