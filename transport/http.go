package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/kbukum/restkit/negotiate"
)

// DefaultTimeout bounds a native exchange when the client sets none.
const DefaultTimeout = 30 * time.Second

var (
	defaultClientOnce sync.Once
	defaultClient     *http.Client
)

// NewClient builds an *http.Client with a cookie jar scoped by the public
// suffix list, so cookies set by one host are replayed like a browser would.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := &http.Client{
		Transport: http.DefaultTransport.(*http.Transport).Clone(),
		Timeout:   timeout,
	}
	if jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List}); err == nil {
		client.Jar = jar
	}
	return client
}

// DefaultClient returns the process-wide client shared by native transports.
func DefaultClient() *http.Client {
	defaultClientOnce.Do(func() {
		defaultClient = NewClient(DefaultTimeout)
	})
	return defaultClient
}

// HTTP is the native Transport backed by net/http.
type HTTP struct {
	client *http.Client

	mu       sync.Mutex
	ctx      context.Context
	method   string
	url      string
	async    bool
	opened   bool
	sent     bool
	header   http.Header
	onLoad   func()
	onError  func(error)
	status   int
	body     []byte
	response http.Header
}

var (
	_ Transport     = (*HTTP)(nil)
	_ ContextBinder = (*HTTP)(nil)
)

// NewHTTP returns a native transport using client, or DefaultClient when
// client is nil.
func NewHTTP(client *http.Client) *HTTP {
	if client == nil {
		client = DefaultClient()
	}
	return &HTTP{client: client, ctx: context.Background(), header: make(http.Header)}
}

// BindContext ties the exchange to ctx.
func (t *HTTP) BindContext(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ctx != nil {
		t.ctx = ctx
	}
}

// Open records the method and target. It may be called again before Send.
func (t *HTTP) Open(method, url string, async bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sent {
		return fmt.Errorf("transport: open after send")
	}
	if method == "" || url == "" {
		return fmt.Errorf("transport: method and url are required")
	}
	t.method, t.url, t.async, t.opened = method, url, async, true
	return nil
}

// SetRequestHeader sets a request header, replacing any previous value.
func (t *HTTP) SetRequestHeader(field, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.header.Set(field, value)
}

func (t *HTTP) OnLoad(fn func()) {
	t.mu.Lock()
	t.onLoad = fn
	t.mu.Unlock()
}

func (t *HTTP) OnError(fn func(error)) {
	t.mu.Lock()
	t.onError = fn
	t.mu.Unlock()
}

// Send serializes body and performs the exchange, in a goroutine when the
// transport was opened async. It fails synchronously only when the
// transport was not opened, was already sent, or the body cannot be encoded.
func (t *HTTP) Send(body any) error {
	t.mu.Lock()
	if !t.opened {
		t.mu.Unlock()
		return fmt.Errorf("transport: send before open")
	}
	if t.sent {
		t.mu.Unlock()
		return fmt.Errorf("transport: already sent")
	}
	t.sent = true

	reader, override, err := negotiate.Serialize(body, t.header.Get("Content-Type"))
	if err != nil {
		t.mu.Unlock()
		return err
	}
	if override != "" {
		t.header.Set("Content-Type", override)
	}

	req, err := http.NewRequestWithContext(t.ctx, t.method, t.url, reader)
	if err != nil {
		t.mu.Unlock()
		return fmt.Errorf("transport: build request: %w", err)
	}
	req.Header = t.header.Clone()
	async := t.async
	t.mu.Unlock()

	if async {
		go t.exchange(req)
	} else {
		t.exchange(req)
	}
	return nil
}

func (t *HTTP) exchange(req *http.Request) {
	resp, err := t.client.Do(req)
	if err != nil {
		t.fail(err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.fail(fmt.Errorf("read response body: %w", err))
		return
	}

	t.mu.Lock()
	t.status = resp.StatusCode
	t.body = data
	t.response = resp.Header
	onLoad := t.onLoad
	t.mu.Unlock()

	if onLoad != nil {
		onLoad()
	}
}

func (t *HTTP) fail(err error) {
	t.mu.Lock()
	onError := t.onError
	t.mu.Unlock()
	if onError != nil {
		onError(err)
	}
}

func (t *HTTP) Status() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Response returns the body as text, as an XHR with the default response
// type does.
func (t *HTTP) Response() any {
	return t.ResponseText()
}

func (t *HTTP) ResponseText() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.body)
}

func (t *HTTP) ResponseHeader(name string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.response == nil {
		return ""
	}
	return t.response.Get(name)
}

// Target returns the method and url recorded by Open.
func (t *HTTP) Target() (method, url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.method, t.url
}
