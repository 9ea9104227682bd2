package negotiate

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Field is one ordered key/value pair of a query string or form.
type Field struct {
	Key   string
	Value any
}

// F builds a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent percent-encodes s the way a URI component is encoded:
// every byte except letters, digits and -_.!~*'() is escaped, and spaces
// become %20.
func EncodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// Stringify renders a field value for a query string or form part.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Encode renders fields as a query string with a single leading '?'. Keys
// and values are encoded independently and pairs keep their order. No
// fields yields a bare "?".
func Encode(fields []Field) string {
	var b strings.Builder
	b.WriteByte('?')
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(EncodeComponent(f.Key))
		b.WriteByte('=')
		b.WriteString(EncodeComponent(Stringify(f.Value)))
	}
	return b.String()
}

// SortedFields converts a map into fields ordered by key.
func SortedFields[V any](m map[string]V) []Field {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, Field{Key: k, Value: m[k]})
	}
	return fields
}

// EncodeValues renders v as an urlencoded body (no leading '?'), keys
// sorted, repeated keys kept in order.
func EncodeValues(v url.Values) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, val := range v[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(EncodeComponent(k))
			b.WriteByte('=')
			b.WriteString(EncodeComponent(val))
		}
	}
	return b.String()
}
