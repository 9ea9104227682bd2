package negotiate

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"reflect"
	"strings"
	"testing"
)

func TestInfer(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		want   string
		wantOK bool
	}{
		{"nil", nil, "", false},
		{"string", "x", TypeText, true},
		{"map", map[string]any{"a": 1}, TypeJSON, true},
		{"struct", struct{ A int }{1}, TypeJSON, true},
		{"slice", []int{1, 2}, TypeJSON, true},
		{"url values", url.Values{"a": {"1"}}, TypeForm, true},
		{"bytes", []byte("raw"), "", false},
		{"reader", strings.NewReader("raw"), "", false},
		{"form data", NewFormData(), "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Infer(tc.body)
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("expected (%q, %v), got (%q, %v)", tc.want, tc.wantOK, got, ok)
			}
		})
	}
}

func TestContentType(t *testing.T) {
	if got := ContentType("text/plain", "UTF-8"); got != "text/plain; charset=UTF-8" {
		t.Errorf("expected 'text/plain; charset=UTF-8', got %q", got)
	}
	if got := ContentType("application/json", ""); got != "application/json" {
		t.Errorf("expected bare media type, got %q", got)
	}
}

func TestMediaType(t *testing.T) {
	tests := map[string]string{
		"":                                   "",
		"application/json":                   "application/json",
		"Application/JSON; charset=UTF-8":    "application/json",
		"text/plain;charset=utf-8":           "text/plain",
		"multipart/form-data; boundary=abc":  "multipart/form-data",
		"weird value; with=\"unterminated": "weird value",
	}
	for in, want := range tests {
		if got := MediaType(in); got != want {
			t.Errorf("MediaType(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestMimeify(t *testing.T) {
	structured := map[string]any{"a": 1}

	tests := []struct {
		name     string
		data     any
		mimeType string
		want     any
	}{
		{"text passthrough", "hello", "text/plain", "hello"},
		{"text with structured input unchanged", structured, "text/plain", structured},
		{"json parses text", `{"a":1}`, "application/json", map[string]any{"a": float64(1)}},
		{"json parses bytes", []byte(`[1,2]`), "application/json; charset=UTF-8", []any{float64(1), float64(2)}},
		{"json passes structured", structured, "application/json", structured},
		{"json invalid text unchanged", "not json", "application/json", "not json"},
		{"urlencoded encodes", "a b&c", "application/x-www-form-urlencoded", "a%20b%26c"},
		{"urlencoded values", url.Values{"b": {"2"}, "a": {"x y"}}, "application/x-www-form-urlencoded", "a=x%20y&b=2"},
		{"unknown passthrough", "<p>", "text/html", "<p>"},
		{"empty type passthrough", 42, "", 42},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Mimeify(tc.data, tc.mimeType)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("expected %#v, got %#v", tc.want, got)
			}
		})
	}
}

func TestEncodeComponent(t *testing.T) {
	tests := map[string]string{
		"plain":        "plain",
		"a b":          "a%20b",
		"a+b":          "a%2Bb",
		"x=1&y=2":      "x%3D1%26y%3D2",
		"-_.!~*'()":    "-_.!~*'()",
		"ünï":          "%C3%BCn%C3%AF",
		"/path?q#frag": "%2Fpath%3Fq%23frag",
	}
	for in, want := range tests {
		if got := EncodeComponent(in); got != want {
			t.Errorf("EncodeComponent(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
		want   string
	}{
		{"empty", nil, "?"},
		{"ordered", []Field{F("a", 1), F("b", 2)}, "?a=1&b=2"},
		{"insertion order kept", []Field{F("b", 2), F("a", 1)}, "?b=2&a=1"},
		{"keys and values encoded", []Field{F("full name", "Jane Doe"), F("q", "a&b")}, "?full%20name=Jane%20Doe&q=a%26b"},
		{"nil value", []Field{F("empty", nil)}, "?empty="},
		{"bool value", []Field{F("active", true)}, "?active=true"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Encode(tc.fields); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSortedFields(t *testing.T) {
	fields := SortedFields(map[string]int{"b": 2, "c": 3, "a": 1})
	want := []Field{F("a", 1), F("b", 2), F("c", 3)}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("expected %v, got %v", want, fields)
	}
}

func TestFormData(t *testing.T) {
	fd := NewFormData(F("name", "Ada"), F("age", 36))
	fd.Append("avatar", &File{Name: "a.png", ContentType: "image/png", Data: []byte("PNG")})

	if fd.Len() != 3 {
		t.Fatalf("expected 3 parts, got %d", fd.Len())
	}
	if v, ok := fd.Get("name"); !ok || v != "Ada" {
		t.Errorf("expected name Ada, got %v", v)
	}
	if _, ok := fd.Get("missing"); ok {
		t.Error("expected missing part to be absent")
	}

	buf, contentType, err := fd.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	mt, params, err := mime.ParseMediaType(contentType)
	if err != nil || mt != TypeMultipart {
		t.Fatalf("expected multipart content type, got %q (%v)", contentType, err)
	}

	r := multipart.NewReader(buf, params["boundary"])
	form, err := r.ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("ReadForm failed: %v", err)
	}
	if got := form.Value["name"]; len(got) != 1 || got[0] != "Ada" {
		t.Errorf("expected name field Ada, got %v", got)
	}
	if got := form.Value["age"]; len(got) != 1 || got[0] != "36" {
		t.Errorf("expected age field 36, got %v", got)
	}
	files := form.File["avatar"]
	if len(files) != 1 || files[0].Filename != "a.png" {
		t.Fatalf("expected avatar file a.png, got %v", files)
	}
	if files[0].Header.Get("Content-Type") != "image/png" {
		t.Errorf("expected image/png part, got %q", files[0].Header.Get("Content-Type"))
	}
}

func TestFormDataFieldsIsCopy(t *testing.T) {
	fd := NewFormData(F("a", "1"))
	fields := fd.Fields()
	fields[0].Value = "changed"
	if v, _ := fd.Get("a"); v != "1" {
		t.Errorf("expected form to be unaffected, got %v", v)
	}
}

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	if r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return string(data)
}

func TestSerialize(t *testing.T) {
	tests := []struct {
		name        string
		body        any
		contentType string
		want        string
	}{
		{"nil", nil, TypeJSON, ""},
		{"string", "hello", TypeText, "hello"},
		{"bytes", []byte("raw"), "application/octet-stream", "raw"},
		{"reader", bytes.NewBufferString("streamed"), TypeText, "streamed"},
		{"json map", map[string]any{"a": 1}, TypeJSON, `{"a":1}`},
		{"json struct", struct {
			Name string `json:"name"`
		}{"x"}, TypeJSON, `{"name":"x"}`},
		{"url values", url.Values{"q": {"a b"}}, TypeForm, "q=a%20b"},
		{"map as form", map[string]string{"b": "2", "a": "1"}, TypeForm + "; charset=UTF-8", "a=1&b=2"},
		{"map as json when not form", map[string]string{"a": "1"}, TypeJSON, `{"a":"1"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, override, err := Serialize(tc.body, tc.contentType)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if override != "" {
				t.Errorf("expected no override, got %q", override)
			}
			if got := readAll(t, r); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSerializeFormData(t *testing.T) {
	r, override, err := Serialize(NewFormData(F("a", "1")), TypeMultipart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(override, TypeMultipart+"; boundary=") {
		t.Errorf("expected boundary override, got %q", override)
	}
	if !strings.Contains(readAll(t, r), `name="a"`) {
		t.Error("expected encoded part for field a")
	}
}

func TestSerializeUnencodable(t *testing.T) {
	if _, _, err := Serialize(map[string]any{"ch": make(chan int)}, TypeJSON); err == nil {
		t.Fatal("expected json encoding error")
	}
}
