package negotiate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Serialize turns a request body into wire bytes. contentType is the
// declared Content-Type; the returned override is non-empty only when the
// body dictates its own header, as multipart forms do with their boundary.
func Serialize(body any, contentType string) (r io.Reader, override string, err error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case *FormData:
		buf, ct, err := v.Encode()
		if err != nil {
			return nil, "", fmt.Errorf("encode multipart form: %w", err)
		}
		return buf, ct, nil
	case url.Values:
		return strings.NewReader(EncodeValues(v)), "", nil
	case string:
		return strings.NewReader(v), "", nil
	case map[string]string:
		if MediaType(contentType) == TypeForm {
			return strings.NewReader(Encode(SortedFields(v))[1:]), "", nil
		}
	case map[string]any:
		if MediaType(contentType) == TypeForm {
			return strings.NewReader(Encode(SortedFields(v))[1:]), "", nil
		}
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("encode json body: %w", err)
	}
	return bytes.NewReader(data), "", nil
}
