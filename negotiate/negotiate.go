package negotiate

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/url"
	"strings"
)

// Well-known MIME types.
const (
	TypeJSON      = "application/json"
	TypeText      = "text/plain"
	TypeForm      = "application/x-www-form-urlencoded"
	TypeMultipart = "multipart/form-data"
)

// Infer returns the MIME type implied by body. The second result is false
// when body carries no type information: nil, raw bytes, readers and
// multipart forms, which declare their own type.
func Infer(body any) (string, bool) {
	switch body.(type) {
	case nil, []byte, io.Reader, *FormData:
		return "", false
	case string:
		return TypeText, true
	case url.Values:
		return TypeForm, true
	default:
		return TypeJSON, true
	}
}

// ContentType formats a Content-Type header value from a media type and a
// charset. An empty charset yields the bare media type.
func ContentType(mediaType, charset string) string {
	if charset == "" {
		return mediaType
	}
	return mediaType + "; charset=" + charset
}

// MediaType extracts the lower-cased media type from a Content-Type header
// value, dropping any parameters.
func MediaType(header string) string {
	if header == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		mt, _, _ = strings.Cut(header, ";")
		return strings.ToLower(strings.TrimSpace(mt))
	}
	return mt
}

// Mimeify shapes data according to mimeType:
//
//	text/plain                         passed through
//	application/json                   textual input parsed, structured input passed through
//	application/x-www-form-urlencoded  percent-encoded
//
// Any other type, and JSON text that fails to parse, is returned unchanged.
func Mimeify(data any, mimeType string) any {
	switch MediaType(mimeType) {
	case TypeJSON:
		var raw []byte
		switch v := data.(type) {
		case string:
			raw = []byte(v)
		case []byte:
			raw = v
		default:
			return data
		}
		var out any
		if err := json.Unmarshal(raw, &out); err != nil {
			return data
		}
		return out
	case TypeForm:
		switch v := data.(type) {
		case url.Values:
			return EncodeValues(v)
		case string:
			return EncodeComponent(v)
		case []byte:
			return EncodeComponent(string(v))
		case nil:
			return data
		default:
			return EncodeComponent(fmt.Sprint(v))
		}
	default:
		return data
	}
}
