package negotiate

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/textproto"
)

// File is a file part of a multipart form.
type File struct {
	// Name is the file name sent to the server.
	Name string
	// ContentType is the MIME type of the part. Defaults to application/octet-stream.
	ContentType string
	// Data is the file content. Used if Reader is nil.
	Data []byte
	// Reader streams the content instead of Data.
	Reader io.Reader
}

// FormData is an ordered multipart/form-data body. Values are strings,
// *File parts, or anything else rendered with Stringify.
type FormData struct {
	fields []Field
}

// NewFormData builds a form from fields, keeping their order.
func NewFormData(fields ...Field) *FormData {
	fd := &FormData{}
	for _, f := range fields {
		fd.Append(f.Key, f.Value)
	}
	return fd
}

// Append adds a part. Repeated names are kept.
func (fd *FormData) Append(name string, value any) {
	fd.fields = append(fd.fields, Field{Key: name, Value: value})
}

// Fields returns a copy of the parts in order.
func (fd *FormData) Fields() []Field {
	out := make([]Field, len(fd.fields))
	copy(out, fd.fields)
	return out
}

// Get returns the first value appended under name.
func (fd *FormData) Get(name string) (any, bool) {
	for _, f := range fd.fields {
		if f.Key == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Len returns the number of parts.
func (fd *FormData) Len() int {
	return len(fd.fields)
}

// Encode writes the multipart body and returns it together with the
// Content-Type header carrying the boundary.
func (fd *FormData) Encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fd.fields {
		file, ok := f.Value.(*File)
		if !ok {
			if err := w.WriteField(f.Key, Stringify(f.Value)); err != nil {
				return nil, "", err
			}
			continue
		}

		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			`form-data; name="`+escapeQuotes(f.Key)+`"; filename="`+escapeQuotes(file.Name)+`"`)
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", err
		}

		if file.Reader != nil {
			if _, err := io.Copy(part, file.Reader); err != nil {
				return nil, "", err
			}
		} else if _, err := part.Write(file.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func escapeQuotes(s string) string {
	var buf bytes.Buffer
	for _, b := range []byte(s) {
		if b == '"' || b == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(b)
	}
	return buf.String()
}
