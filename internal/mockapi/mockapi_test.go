package mockapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kbukum/restkit/component"
	"github.com/kbukum/restkit/logger"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(Config{}, nil, logger.NewNop())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func do(t *testing.T, method, url, contentType, body string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data
}

func TestCRUD(t *testing.T) {
	_, ts := newTestServer(t)
	base := ts.URL + "/users"

	status, body := do(t, http.MethodPost, base, "application/json", `{"name":"ada"}`)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", status, body)
	}
	var created map[string]any
	_ = json.Unmarshal(body, &created)
	if created["id"] != "1" {
		t.Errorf("expected id 1, got %v", created["id"])
	}

	if status, body = do(t, http.MethodGet, base+"/1", "", ""); status != http.StatusOK || !bytes.Contains(body, []byte(`"ada"`)) {
		t.Errorf("expected ada, got %d %s", status, body)
	}

	if status, _ = do(t, http.MethodPatch, base+"/1", "application/json", `{"role":"admin"}`); status != http.StatusOK {
		t.Errorf("expected 200 on patch, got %d", status)
	}
	if status, body = do(t, http.MethodPut, base+"/2", "application/json", `{"name":"bob"}`); status != http.StatusOK {
		t.Errorf("expected 200 on put, got %d", status)
	}

	status, body = do(t, http.MethodGet, base, "", "")
	var list []map[string]any
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("expected JSON array, got %s", body)
	}
	if status != http.StatusOK || len(list) != 2 {
		t.Fatalf("expected 2 users, got %d %v", status, list)
	}
	if list[0]["role"] != "admin" || list[1]["name"] != "bob" {
		t.Errorf("unexpected list %v", list)
	}

	if status, _ = do(t, http.MethodDelete, base+"/1", "", ""); status != http.StatusNoContent {
		t.Errorf("expected 204 on delete, got %d", status)
	}
	if status, _ = do(t, http.MethodDelete, base+"/1", "", ""); status != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", status)
	}
}

func TestErrors(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name, method, path, body string
		status                   int
		code                     string
	}{
		{"missing entity", http.MethodGet, "/users/9", "", http.StatusNotFound, "NOT_FOUND"},
		{"patch missing", http.MethodPatch, "/users/9", `{"a":1}`, http.StatusNotFound, "NOT_FOUND"},
		{"not an object", http.MethodPost, "/users", `[1,2]`, http.StatusBadRequest, "INVALID_INPUT"},
		{"empty body", http.MethodPost, "/users", ``, http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, tt.method, ts.URL+tt.path, "application/json", tt.body)
			if status != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, status)
			}
			var envelope struct {
				Error struct {
					Code      string `json:"code"`
					RequestID string `json:"request_id"`
				} `json:"error"`
			}
			_ = json.Unmarshal(body, &envelope)
			if envelope.Error.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, body)
			}
			if envelope.Error.RequestID == "" {
				t.Errorf("expected request id in error body, got %s", body)
			}
		})
	}
}

func TestEmptyCollection(t *testing.T) {
	_, ts := newTestServer(t)
	status, body := do(t, http.MethodGet, ts.URL+"/posts", "", "")
	if status != http.StatusOK || strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("expected empty array, got %d %s", status, body)
	}
}

func TestOptionsHeadLink(t *testing.T) {
	s, ts := newTestServer(t)
	s.Store().Seed("users", Item{"id": "7", "name": "ada"})

	if status, _ := do(t, http.MethodOptions, ts.URL+"/", "", ""); status != http.StatusNoContent {
		t.Errorf("expected 204 on OPTIONS /, got %d", status)
	}
	if status, _ := do(t, http.MethodHead, ts.URL+"/users/7", "", ""); status != http.StatusOK {
		t.Errorf("expected 200 on HEAD, got %d", status)
	}
	if status, _ := do(t, http.MethodHead, ts.URL+"/users/8", "", ""); status != http.StatusNotFound {
		t.Errorf("expected 404 on HEAD of missing, got %d", status)
	}
	if status, _ := do(t, "LINK", ts.URL+"/users/7", "", ""); status != http.StatusNoContent {
		t.Errorf("expected 204 on LINK, got %d", status)
	}
}

func TestEcho(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name        string
		contentType string
		body        string
		want        any
	}{
		{"json", "application/json; charset=UTF-8", `{"a":1}`, map[string]any{"a": float64(1)}},
		{"text", "text/plain; charset=UTF-8", "hello", "hello"},
		{"form", "application/x-www-form-urlencoded", "a=1&b=x%20y", map[string]any{"a": "1", "b": "x y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, http.MethodPost, ts.URL+"/echo?q=1", tt.contentType, tt.body)
			if status != http.StatusOK {
				t.Fatalf("expected 200, got %d", status)
			}
			var e struct {
				Method string            `json:"method"`
				Query  map[string]string `json:"query"`
				Body   any               `json:"body"`
			}
			if err := json.Unmarshal(body, &e); err != nil {
				t.Fatalf("bad echo %s", body)
			}
			if e.Method != http.MethodPost || e.Query["q"] != "1" {
				t.Errorf("unexpected echo %+v", e)
			}
			if !jsonEqual(e.Body, tt.want) {
				t.Errorf("expected body %v, got %v", tt.want, e.Body)
			}
		})
	}
}

func TestRequestIDEchoed(t *testing.T) {
	_, ts := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	req.Header.Set(requestIDHeader, "abc")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(requestIDHeader); got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
}

func TestLifecycle(t *testing.T) {
	s := New(Config{Port: 0}, nil, logger.NewNop())
	ctx := context.Background()

	if s.Health(ctx).Status != component.StatusUnhealthy {
		t.Error("expected unhealthy before start")
	}
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.Start(ctx); err == nil {
		t.Error("expected error on second start")
	}
	if s.Health(ctx).Status != component.StatusHealthy {
		t.Error("expected healthy while listening")
	}

	status, _ := do(t, http.MethodGet, s.URL()+"/health", "", "")
	if status != http.StatusOK {
		t.Errorf("expected 200, got %d", status)
	}

	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if s.URL() != "" {
		t.Error("expected empty URL after stop")
	}
}

func TestConfig(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Host != "127.0.0.1" || cfg.ReadTimeout != 15 || cfg.IdleTimeout != 60 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := (&Config{Port: 70000}).Validate(); err == nil {
		t.Error("expected error for port out of range")
	}
}

func TestStoreIDs(t *testing.T) {
	s := NewStore()
	s.Seed("users", Item{"id": 2.0}, Item{"name": "x"}, Item{"id": "b"}, Item{"id": "a"})

	var ids []any
	for _, item := range s.List("users") {
		ids = append(ids, item["id"])
	}
	want := []any{"1", "2", "a", "b"}
	if !jsonEqual(ids, want) {
		t.Errorf("expected %v, got %v", want, ids)
	}
}

func jsonEqual(a, b any) bool {
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	return bytes.Equal(ja, jb)
}
