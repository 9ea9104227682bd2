package rest

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/restkit/component"
	"github.com/kbukum/restkit/config"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/observability"
	"github.com/kbukum/restkit/request"
	"github.com/kbukum/restkit/transport"
)

// Client is the configured entry point to one REST API: it owns the
// transport factory, the request defaults, the tracing lifecycle and the
// services created through it.
type Client struct {
	cfg     config.Config
	factory *transport.Factory
	builder *request.Builder
	reqOpts []request.Option
	log     *logger.Logger

	mu       sync.Mutex
	services map[string]*Service
	order    []string
	shutdown func(context.Context) error
	started  bool
}

var (
	_ component.Component   = (*Client)(nil)
	_ component.Describable = (*Client)(nil)
)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTransportFactory replaces the native HTTP transport factory.
func WithTransportFactory(f *transport.Factory) ClientOption {
	return func(c *Client) { c.factory = f }
}

// WithClientLogger sets the client logger.
func WithClientLogger(l *logger.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// NewClient builds a client from cfg. Defaults are applied to a copy of
// cfg before it is validated.
func NewClient(cfg *config.Config, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("rest: config is required")
	}
	c := &Client{cfg: *cfg, services: make(map[string]*Service)}
	c.cfg.ApplyDefaults()
	if err := c.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("rest: invalid config: %w", err)
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.WithComponent("client")
	}
	c.log = c.log.WithFields(logger.Fields(logger.FieldService, c.cfg.Name))

	if c.factory == nil {
		httpClient := transport.NewClient(c.cfg.Timeout)
		c.factory = transport.NewFactory(func() (transport.Transport, error) {
			return transport.NewHTTP(httpClient), nil
		}, transport.WithLogger(c.log.WithComponent("transport")))
	}

	reqLog := c.log.WithComponent("request")
	c.reqOpts = []request.Option{
		request.WithFactory(c.factory),
		request.WithLogger(reqLog),
		c.defaults(),
	}
	c.builder = request.NewBuilderWith(c.cfg.BaseURL, c.factory, reqLog,
		request.WithDefaultHeaders(c.cfg.Headers),
		request.WithDefaultType(c.cfg.Type, c.cfg.Charset),
	)
	return c, nil
}

// defaults applies the configured type, charset and headers to a request.
func (c *Client) defaults() request.Option {
	typ, charset, headers := c.cfg.Type, c.cfg.Charset, c.cfg.Headers
	return func(r *request.Request) {
		r.WithType(typ).WithCharset(charset)
		if len(headers) > 0 {
			r.AddHeaders(headers)
		}
	}
}

// Config returns the effective configuration.
func (c *Client) Config() config.Config { return c.cfg }

// Factory returns the client's transport factory.
func (c *Client) Factory() *transport.Factory { return c.factory }

// Request builds a request for m against path joined onto the base URL.
func (c *Client) Request(m request.Method, path string) *request.Request {
	return c.builder.Verb(m, path)
}

// Resource returns the collection resource name under the base URL.
func (c *Client) Resource(name string) *Resource {
	return NewResource(c.cfg.BaseURL, name, c.reqOpts...)
}

// Service returns the service registered under name, creating it with opts
// on first use.
func (c *Client) Service(name string, opts ...ServiceOption) (*Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.services[name]; ok {
		return s, nil
	}

	all := append([]ServiceOption{
		WithRequestOptions(c.reqOpts...),
		WithLogger(c.log.WithComponent("rest")),
	}, opts...)
	s, err := NewService(name, c.cfg.BaseURL, all...)
	if err != nil {
		return nil, err
	}
	c.services[name] = s
	c.order = append(c.order, name)
	return s, nil
}

// Services returns the services in creation order.
func (c *Client) Services() []*Service {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Service, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.services[name])
	}
	return out
}

func (c *Client) Name() string { return c.cfg.Name }

// Start installs the tracing and metric providers when tracing is enabled.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	shutdown, err := observability.Setup(ctx, c.cfg.Tracing)
	if err != nil {
		return fmt.Errorf("rest: observability setup: %w", err)
	}
	c.shutdown = shutdown
	c.started = true
	return nil
}

// Stop closes every service, newest first, and flushes telemetry.
func (c *Client) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.order) - 1; i >= 0; i-- {
		c.services[c.order[i]].Close()
	}
	if !c.started {
		return nil
	}
	c.started = false
	if c.shutdown != nil {
		return c.shutdown(ctx)
	}
	return nil
}

func (c *Client) Health(ctx context.Context) component.Health {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()

	h := component.Health{Name: c.cfg.Name, Status: component.StatusHealthy}
	switch {
	case !started:
		h.Status, h.Message = component.StatusUnhealthy, "not started"
	case c.cfg.BaseURL == "":
		h.Status, h.Message = component.StatusDegraded, "no base url configured"
	}
	return h
}

func (c *Client) Describe() component.Description {
	return component.Description{
		Name:    c.cfg.Name,
		Type:    "client",
		Details: fmt.Sprintf("%s timeout=%s", c.cfg.BaseURL, c.cfg.Timeout),
	}
}

// Probe sends OPTIONS to the base URL and reports the status received.
// Only a transport failure is an error; any HTTP status is a result.
func (c *Client) Probe(ctx context.Context) (int, error) {
	r := c.Request(request.OPTIONS, "")
	_, err := r.Do(ctx)
	if resp := r.Response(); resp != nil {
		return resp.Status, nil
	}
	return 0, err
}
