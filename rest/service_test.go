package rest

import (
	"context"
	stderrors "errors"
	"reflect"
	"testing"
	"time"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/request"
	"github.com/kbukum/restkit/transport/transporttest"
)

const testBase = "http://api.test"

func newRecorded(status int, body string) *transporttest.Recorder {
	return &transporttest.Recorder{New: func() *transporttest.Stub { return transporttest.JSON(status, body) }}
}

func newTestService(t *testing.T, name string, rec *transporttest.Recorder, opts ...ServiceOption) *Service {
	t.Helper()
	opts = append([]ServiceOption{
		WithRequestOptions(request.WithFactory(rec.Factory()), request.WithLogger(logger.NewNop())),
		WithLogger(logger.NewNop()),
	}, opts...)
	s, err := NewService(name, testBase, opts...)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return s
}

// wait adapts a (future, configuration error) pair so calls chain directly:
// wait(t)(s.Get(ctx, nil)).
func wait(t *testing.T) func(*request.Future, error) (any, error) {
	return func(fut *request.Future, err error) (any, error) {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected configuration error: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return fut.Wait(ctx)
	}
}

func TestNewService_RequiresName(t *testing.T) {
	if _, err := NewService("", testBase); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestCurrent_NothingSelected(t *testing.T) {
	rec := newRecorded(200, `{}`)
	s := newTestService(t, "users", rec)

	v, err := wait(t)(s.Current(context.Background()))
	if v != nil || err != nil {
		t.Errorf("expected nil result, got %v %v", v, err)
	}
	if n := len(rec.Stubs()); n != 0 {
		t.Errorf("expected no transport, got %d", n)
	}
}

func TestSelect_FetchesOnce(t *testing.T) {
	rec := newRecorded(200, `{"id":"7","name":"ada"}`)
	s := newTestService(t, "users", rec)

	v, err := wait(t)(s.Select(context.Background(), "7"))
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if v.(map[string]any)["name"] != "ada" {
		t.Errorf("expected ada, got %v", v)
	}

	stubs := rec.Stubs()
	if len(stubs) != 1 {
		t.Fatalf("expected exactly one fetch, got %d", len(stubs))
	}
	if stubs[0].Method() != "GET" || stubs[0].URL() != testBase+"/users/7" {
		t.Errorf("expected GET %s/users/7, got %s %s", testBase, stubs[0].Method(), stubs[0].URL())
	}
	if id, ok := s.Selected(); !ok || id != "7" {
		t.Errorf("expected selected 7, got %q %v", id, ok)
	}
	if s.State() != nil {
		t.Errorf("expected select not to publish, got %v", s.State())
	}
}

func TestVerb_AddressesSelection(t *testing.T) {
	rec := newRecorded(200, `{}`)
	s := newTestService(t, "users", rec)
	ctx := context.Background()

	_, _ = wait(t)(s.Get(ctx, nil))
	s.mu.Lock()
	s.selected, s.hasSel = "3", true
	s.mu.Unlock()
	_, _ = wait(t)(s.Put(ctx, map[string]any{"name": "bob"}))
	s.Deselect()
	_, _ = wait(t)(s.Post(ctx, map[string]any{"name": "eve"}))

	stubs := rec.Stubs()
	want := []string{"GET " + testBase + "/users", "PUT " + testBase + "/users/3", "POST " + testBase + "/users"}
	if len(stubs) != len(want) {
		t.Fatalf("expected %d exchanges, got %d", len(want), len(stubs))
	}
	for i, st := range stubs {
		if got := st.Method() + " " + st.URL(); got != want[i] {
			t.Errorf("exchange %d: expected %q, got %q", i, want[i], got)
		}
	}
	if body, ok := stubs[1].SentBody().(map[string]any); !ok || body["name"] != "bob" {
		t.Errorf("expected body sent verbatim, got %v", stubs[1].SentBody())
	}
}

func TestVerb_PublishesSuccess(t *testing.T) {
	rec := newRecorded(200, `[{"id":"1"},{"id":"2"}]`)
	s := newTestService(t, "users", rec)

	var seen []any
	_, _ = s.Subscribe("$[*].id", func(v any) { seen = append(seen, v) })

	if _, err := wait(t)(s.Get(context.Background(), nil)); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	want := []any{[]any{"1", "2"}}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("expected %v, got %v", want, seen)
	}
}

func TestVerb_PublishesFailurePayload(t *testing.T) {
	rec := newRecorded(500, `{"message":"boom"}`)
	s := newTestService(t, "users", rec, WithInitialState(map[string]any{"keep": true}))

	var seen []any
	_, _ = s.Subscribe("$", func(v any) { seen = append(seen, v) })

	_, err := wait(t)(s.Delete(context.Background(), nil))
	if !errors.IsHTTPStatus(err) {
		t.Fatalf("expected HTTP status error, got %v", err)
	}
	want := map[string]any{"message": "boom"}
	if !reflect.DeepEqual(s.State(), want) {
		t.Errorf("expected failure payload published, got %v", s.State())
	}
	if len(seen) != 2 || !reflect.DeepEqual(seen[1], want) {
		t.Errorf("expected subscriber notified of failure payload, got %v", seen)
	}
}

func TestVerb_PublishesTransportFailure(t *testing.T) {
	rec := &transporttest.Recorder{New: func() *transporttest.Stub {
		return transporttest.Fail(stderrors.New("connection refused"))
	}}
	s := newTestService(t, "users", rec)

	_, err := wait(t)(s.Get(context.Background(), nil))
	if !errors.IsTransportFailure(err) {
		t.Fatalf("expected transport failure, got %v", err)
	}
	state, ok := s.State().(map[string]any)
	if !ok || state["code"] != string(errors.ErrCodeTransportFailure) {
		t.Errorf("expected the error published, got %v", s.State())
	}
}

func TestByAndAll(t *testing.T) {
	rec := newRecorded(200, `{}`)
	s := newTestService(t, "users", rec)
	ctx := context.Background()

	_, _ = wait(t)(s.By(ctx, "9"))
	_, _ = wait(t)(s.All(ctx))

	stubs := rec.Stubs()
	if stubs[0].URL() != testBase+"/users/9" || stubs[1].URL() != testBase+"/users" {
		t.Errorf("unexpected targets %s, %s", stubs[0].URL(), stubs[1].URL())
	}
	if s.State() != nil {
		t.Errorf("expected no publish, got %v", s.State())
	}
}

func TestParentSubscription(t *testing.T) {
	rec := newRecorded(200, `{}`)
	parent := newTestService(t, "users", rec)

	tests := []struct {
		name string
		opts []ServiceOption
		data any
		want any
	}{
		{
			name: "default pattern",
			data: map[string]any{"posts": []any{"p1"}},
			want: []any{"p1"},
		},
		{
			name: "literal relation",
			opts: []ServiceOption{WithRelation("$.feed.items")},
			data: map[string]any{"feed": map[string]any{"items": []any{"p2"}}},
			want: []any{"p2"},
		},
		{
			name: "relation from own initial state",
			opts: []ServiceOption{
				WithInitialState(map[string]any{"rel": "$.custom"}),
				WithRelationFunc(func(current any) string {
					if m, ok := current.(map[string]any); ok {
						return m["rel"].(string)
					}
					return "$.fallback"
				}),
			},
			data: map[string]any{"custom": "p3", "posts": "ignored"},
			want: "p3",
		},
		{
			name: "relation with empty own state",
			opts: []ServiceOption{WithRelationFunc(func(current any) string {
				if current == nil {
					return "$.fallback"
				}
				return "$.other"
			})},
			data: map[string]any{"fallback": "p4", "other": "wrong"},
			want: "p4",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			child := newTestService(t, "posts", rec, append([]ServiceOption{WithParent(parent)}, tt.opts...)...)
			defer child.Close()

			parent.Update(tt.data)
			if !reflect.DeepEqual(child.State(), tt.want) {
				t.Errorf("expected %v, got %v", tt.want, child.State())
			}
			parent.Update(nil)
		})
	}
}

func TestClose_Unsubscribes(t *testing.T) {
	rec := newRecorded(200, `{}`)
	parent := newTestService(t, "users", rec)
	child := newTestService(t, "posts", rec, WithParent(parent))

	parent.Update(map[string]any{"posts": "a"})
	child.Close()
	child.Close()
	parent.Update(map[string]any{"posts": "b"})

	if child.State() != "a" {
		t.Errorf("expected state frozen at a, got %v", child.State())
	}
}

func TestNewService_BadRelation(t *testing.T) {
	rec := newRecorded(200, `{}`)
	parent := newTestService(t, "users", rec)
	if _, err := NewService("posts", testBase, WithParent(parent), WithRelation("$.posts[?")); err == nil {
		t.Fatal("expected error for invalid relation pattern")
	}
}

func TestVerb_ConfigurationError(t *testing.T) {
	rec := newRecorded(200, `{}`)
	s := newTestService(t, "users", rec)
	s.resource = NewResource("", "users", request.WithFactory(rec.Factory()))

	if _, err := s.Get(context.Background(), nil); !errors.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}
