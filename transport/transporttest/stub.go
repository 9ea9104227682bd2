// Package transporttest provides a scriptable Transport for tests.
package transporttest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/restkit/transport"
)

// Stub is a Transport that answers every Send with a scripted outcome
// instead of touching the network.
type Stub struct {
	// Code is the status reported on load.
	Code int
	// Body is the response text reported on load.
	Body string
	// Payload, when set, is returned by Response instead of Body.
	Payload any
	// Headers are the response headers.
	Headers map[string]string
	// Err makes Send report a transport failure through OnError.
	Err error
	// OpenErr makes Open fail.
	OpenErr error
	// Delay runs the outcome in a goroutine after the given wait.
	Delay time.Duration

	mu       sync.Mutex
	ctx      context.Context
	method   string
	url      string
	async    bool
	reqHdr   map[string]string
	sentBody any
	opens    int
	sends    int
	onLoad   func()
	onError  func(error)
}

var (
	_ transport.Transport     = (*Stub)(nil)
	_ transport.ContextBinder = (*Stub)(nil)
)

// Respond returns a stub answering with status and body.
func Respond(status int, body string) *Stub {
	return &Stub{Code: status, Body: body}
}

// JSON returns a stub answering with status and a JSON body.
func JSON(status int, body string) *Stub {
	return &Stub{Code: status, Body: body, Headers: map[string]string{"Content-Type": "application/json"}}
}

// Fail returns a stub whose Send reports err.
func Fail(err error) *Stub {
	return &Stub{Err: err}
}

func (s *Stub) BindContext(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
}

func (s *Stub) Open(method, url string, async bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opens++
	if s.OpenErr != nil {
		return s.OpenErr
	}
	s.method, s.url, s.async = method, url, async
	return nil
}

func (s *Stub) SetRequestHeader(field, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reqHdr == nil {
		s.reqHdr = make(map[string]string)
	}
	s.reqHdr[field] = value
}

func (s *Stub) OnLoad(fn func()) {
	s.mu.Lock()
	s.onLoad = fn
	s.mu.Unlock()
}

func (s *Stub) OnError(fn func(error)) {
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}

func (s *Stub) Send(body any) error {
	s.mu.Lock()
	s.sends++
	s.sentBody = body
	ctx := s.ctx
	s.mu.Unlock()

	if s.Delay > 0 {
		go func() {
			if ctx == nil {
				time.Sleep(s.Delay)
				s.settle(nil)
				return
			}
			select {
			case <-time.After(s.Delay):
				s.settle(nil)
			case <-ctx.Done():
				s.settle(ctx.Err())
			}
		}()
		return nil
	}
	s.settle(nil)
	return nil
}

func (s *Stub) settle(ctxErr error) {
	s.mu.Lock()
	onLoad, onError := s.onLoad, s.onError
	s.mu.Unlock()

	err := s.Err
	if ctxErr != nil {
		err = ctxErr
	}
	if err != nil {
		if onError != nil {
			onError(err)
		}
		return
	}
	if onLoad != nil {
		onLoad()
	}
}

func (s *Stub) Status() int { return s.Code }

func (s *Stub) Response() any {
	if s.Payload != nil {
		return s.Payload
	}
	return s.Body
}

func (s *Stub) ResponseText() string { return s.Body }

func (s *Stub) ResponseHeader(name string) string {
	for k, v := range s.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Method returns the method passed to Open.
func (s *Stub) Method() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.method
}

// URL returns the target passed to Open.
func (s *Stub) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// Async reports whether Open was asked for asynchronous mode.
func (s *Stub) Async() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.async
}

// RequestHeaders returns a copy of the headers set on the stub.
func (s *Stub) RequestHeaders() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.reqHdr))
	for k, v := range s.reqHdr {
		out[k] = v
	}
	return out
}

// SentBody returns the body passed to Send.
func (s *Stub) SentBody() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sentBody
}

// Opens returns how many times Open was called.
func (s *Stub) Opens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opens
}

// Sends returns how many times Send was called.
func (s *Stub) Sends() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sends
}

// Recorder hands out a fresh Stub per exchange and remembers them, for
// code paths that create several transports.
type Recorder struct {
	// New builds the stub for each exchange. Defaults to a 200 with an empty body.
	New func() *Stub

	mu    sync.Mutex
	stubs []*Stub
}

// Constructor adapts the recorder to a transport.Constructor.
func (r *Recorder) Constructor() transport.Constructor {
	return func() (transport.Transport, error) {
		var s *Stub
		if r.New != nil {
			s = r.New()
		} else {
			s = Respond(200, "")
		}
		if s == nil {
			return nil, errors.New("transporttest: recorder produced no stub")
		}
		r.mu.Lock()
		r.stubs = append(r.stubs, s)
		r.mu.Unlock()
		return s, nil
	}
}

// Factory returns a transport factory backed by the recorder.
func (r *Recorder) Factory() *transport.Factory {
	return transport.NewFactory(r.Constructor())
}

// Stubs returns the stubs handed out so far.
func (r *Recorder) Stubs() []*Stub {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Stub(nil), r.stubs...)
}
