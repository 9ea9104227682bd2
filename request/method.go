package request

import "github.com/kbukum/restkit/validation"

// Method is an HTTP verb accepted by a Request.
type Method string

const (
	GET     Method = "GET"
	POST    Method = "POST"
	PUT     Method = "PUT"
	PATCH   Method = "PATCH"
	DELETE  Method = "DELETE"
	OPTIONS Method = "OPTIONS"
	HEAD    Method = "HEAD"
	LINK    Method = "LINK"
)

// Methods lists every accepted verb in a fixed order.
var Methods = []Method{GET, POST, PUT, PATCH, DELETE, OPTIONS, HEAD, LINK}

// Valid reports whether m is one of Methods. Matching is case-sensitive.
func (m Method) Valid() bool {
	switch m {
	case GET, POST, PUT, PATCH, DELETE, OPTIONS, HEAD, LINK:
		return true
	}
	return false
}

func (m Method) String() string { return string(m) }

// IsMethod reports whether s names an accepted verb.
func IsMethod(s string) bool {
	return Method(s).Valid()
}

func init() {
	// validator tag for descriptor and config structs
	_ = validation.RegisterRule("httpmethod", IsMethod,
		"must be one of GET, POST, PUT, PATCH, DELETE, OPTIONS, HEAD, LINK")
}
