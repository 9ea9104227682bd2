package state

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jmespath/go-jmespath"

	"github.com/kbukum/restkit/logger"
)

// Handler receives the sub-state selected by a subscription pattern.
type Handler func(data any)

// Channel is the publish/subscribe contract a Service depends on.
type Channel interface {
	// Subscribe registers h for changes of the sub-state selected by
	// pattern and returns a function that cancels the subscription.
	Subscribe(pattern string, h Handler) (unsubscribe func(), err error)
	// Update publishes data as the new state.
	Update(data any)
	// State returns the current state.
	State() any
}

type subscription struct {
	id      string
	pattern string
	expr    *jmespath.JMESPath
	handler Handler
	last    any
}

// Store is a Channel holding one state value in memory. Handlers run
// synchronously on the goroutine that calls Update, outside the store lock.
type Store struct {
	mu    sync.RWMutex
	state any
	subs  []*subscription
	log   *logger.Logger
}

var _ Channel = (*Store)(nil)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *logger.Logger) StoreOption {
	return func(s *Store) { s.log = l }
}

// NewStore returns a store holding initial.
func NewStore(initial any, opts ...StoreOption) *Store {
	s := &Store{state: normalize(initial)}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.WithComponent("state")
	}
	return s
}

// State returns the current state.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Search evaluates pattern against the current state.
func (s *Store) Search(pattern string) (any, error) {
	expr, err := Compile(pattern)
	if err != nil {
		return nil, err
	}
	return expr.Search(s.State())
}

// Subscribe registers h for pattern. When the pattern already selects a
// value, h receives it before Subscribe returns.
func (s *Store) Subscribe(pattern string, h Handler) (func(), error) {
	if h == nil {
		return nil, fmt.Errorf("state: nil handler for pattern %q", pattern)
	}
	expr, err := Compile(pattern)
	if err != nil {
		return nil, err
	}

	sub := &subscription{id: uuid.NewString(), pattern: pattern, expr: expr, handler: h}

	s.mu.Lock()
	sub.last = evaluate(sub.expr, s.state)
	s.subs = append(s.subs, sub)
	initial := sub.last
	s.mu.Unlock()

	s.log.Debug("subscribed", logger.Fields(logger.FieldPattern, pattern, "subscription", sub.id))
	if initial != nil {
		h(initial)
	}
	return func() { s.unsubscribe(sub.id) }, nil
}

func (s *Store) unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// Update replaces the state with data and notifies every subscription whose
// selected value changed, in subscription order.
func (s *Store) Update(data any) {
	type delivery struct {
		h Handler
		v any
	}

	s.mu.Lock()
	s.state = normalize(data)
	var pending []delivery
	for _, sub := range s.subs {
		v := evaluate(sub.expr, s.state)
		if reflect.DeepEqual(v, sub.last) {
			continue
		}
		sub.last = v
		pending = append(pending, delivery{h: sub.handler, v: v})
	}
	s.mu.Unlock()

	for _, d := range pending {
		d.h(d.v)
	}
}

// Len returns the number of live subscriptions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Compile translates a JSONPath-like pattern into a JMESPath expression.
func Compile(pattern string) (*jmespath.JMESPath, error) {
	expr, err := jmespath.Compile(Translate(pattern))
	if err != nil {
		return nil, fmt.Errorf("state: invalid pattern %q: %w", pattern, err)
	}
	return expr, nil
}

// Translate maps a JSONPath root onto JMESPath: "$" becomes "@", "$.a.b"
// becomes "a.b" and "$[0]" becomes "[0]".
func Translate(pattern string) string {
	p := strings.TrimSpace(pattern)
	switch {
	case p == "" || p == "$":
		return "@"
	case strings.HasPrefix(p, "$."):
		return p[2:]
	case strings.HasPrefix(p, "$["):
		return p[1:]
	}
	return p
}

func evaluate(expr *jmespath.JMESPath, state any) any {
	if state == nil {
		return nil
	}
	v, err := expr.Search(state)
	if err != nil {
		return nil
	}
	return v
}

// normalize converts data to the generic JSON shape JMESPath walks:
// maps, slices, strings, float64, bool and nil.
func normalize(data any) any {
	switch data.(type) {
	case nil, string, float64, bool:
		return data
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return data
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return data
	}
	return out
}
