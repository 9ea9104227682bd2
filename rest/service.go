package rest

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/request"
	"github.com/kbukum/restkit/state"
)

// Service binds a Resource to a state channel. Verb calls address the
// selected entity, or the collection when none is selected, and publish
// every settlement to the channel.
type Service struct {
	name     string
	resource *Resource
	channel  state.Channel
	log      *logger.Logger

	mu       sync.RWMutex
	selected string
	hasSel   bool

	unsubscribe func()
}

var _ state.Channel = (*Service)(nil)

type serviceOptions struct {
	parent      state.Channel
	pattern     string
	relation    func(current any) string
	channel     state.Channel
	initial     any
	requestOpts []request.Option
	log         *logger.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

// WithParent subscribes the service to parent's state. The default pattern
// is "$.<name>".
func WithParent(parent state.Channel) ServiceOption {
	return func(o *serviceOptions) { o.parent = parent }
}

// WithRelation sets the pattern selecting this service's state from the
// parent's.
func WithRelation(pattern string) ServiceOption {
	return func(o *serviceOptions) { o.pattern = pattern }
}

// WithRelationFunc computes the pattern from the service's own state at
// construction: the initial state, or the state of the channel given with
// WithChannel. It takes precedence over WithRelation.
func WithRelationFunc(fn func(current any) string) ServiceOption {
	return func(o *serviceOptions) { o.relation = fn }
}

// WithChannel publishes into ch instead of a private state.Store.
func WithChannel(ch state.Channel) ServiceOption {
	return func(o *serviceOptions) { o.channel = ch }
}

// WithInitialState seeds the private store. Ignored with WithChannel.
func WithInitialState(v any) ServiceOption {
	return func(o *serviceOptions) { o.initial = v }
}

// WithRequestOptions passes opts to every request the service sends.
func WithRequestOptions(opts ...request.Option) ServiceOption {
	return func(o *serviceOptions) { o.requestOpts = append(o.requestOpts, opts...) }
}

// WithLogger sets the service logger.
func WithLogger(l *logger.Logger) ServiceOption {
	return func(o *serviceOptions) { o.log = l }
}

// NewService creates the service name over the collection base/name.
func NewService(name, base string, opts ...ServiceOption) (*Service, error) {
	if name == "" {
		return nil, fmt.Errorf("rest: service name is required")
	}
	o := &serviceOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.WithComponent("rest")
	}
	log := o.log.WithFields(logger.Fields(logger.FieldService, name))

	ch := o.channel
	if ch == nil {
		ch = state.NewStore(o.initial, state.WithLogger(log))
	}

	s := &Service{
		name:     name,
		resource: NewResource(base, name, o.requestOpts...),
		channel:  ch,
		log:      log,
	}

	if o.parent != nil {
		pattern := o.pattern
		if o.relation != nil {
			pattern = o.relation(ch.State())
		}
		if pattern == "" {
			pattern = "$." + name
		}
		unsubscribe, err := o.parent.Subscribe(pattern, s.Update)
		if err != nil {
			return nil, fmt.Errorf("rest: subscribe %s to parent: %w", name, err)
		}
		s.unsubscribe = unsubscribe
		log.Debug("subscribed to parent", logger.Fields(logger.FieldPattern, pattern))
	}
	return s, nil
}

func (s *Service) Name() string { return s.name }

// Resource returns a copy of the service's collection resource.
func (s *Service) Resource() *Resource { return s.resource.Copy() }

// Channel returns the channel the service publishes to.
func (s *Service) Channel() state.Channel { return s.channel }

// State returns the channel's current state.
func (s *Service) State() any { return s.channel.State() }

// Subscribe watches the service's state.
func (s *Service) Subscribe(pattern string, h state.Handler) (func(), error) {
	return s.channel.Subscribe(pattern, h)
}

// Update publishes data to the service's channel.
func (s *Service) Update(data any) {
	s.channel.Update(data)
}

// Selected returns the selected entity id.
func (s *Service) Selected() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected, s.hasSel
}

// Deselect clears the selected entity.
func (s *Service) Deselect() {
	s.mu.Lock()
	s.selected, s.hasSel = "", false
	s.mu.Unlock()
}

// target returns the resource the verb proxies address.
func (s *Service) target() *Resource {
	if id, ok := s.Selected(); ok {
		return s.resource.One(id)
	}
	return s.resource.All()
}

// Verb sends m with body to the addressed resource. Every settlement is
// published to the channel before the returned future settles: the payload
// on success, the response payload of an HTTP status failure, or the error
// itself when no response arrived.
func (s *Service) Verb(ctx context.Context, m request.Method, body any) (*request.Future, error) {
	req := s.target().Request(m)
	if body != nil {
		req.WithBody(body)
	}
	fut, err := req.Send(ctx)
	if err != nil {
		return nil, err
	}

	out, settle := request.NewFuture()
	fut.Then(func(v any, err error) {
		s.channel.Update(published(v, err))
		if err != nil {
			s.log.Warn("service request failed", logger.MergeWithError(logger.Fields(
				logger.FieldMethod, string(m),
				logger.FieldURL, req.URL(),
			), err))
		} else {
			s.log.Debug("published", logger.Fields(logger.FieldMethod, string(m)))
		}
		settle(v, err)
	})
	return out, nil
}

// published is the value a settlement puts on the channel.
func published(v any, err error) any {
	if err == nil {
		return v
	}
	if payload, ok := errors.Payload(err); ok {
		return payload
	}
	return err
}

func (s *Service) Get(ctx context.Context, body any) (*request.Future, error) {
	return s.Verb(ctx, request.GET, body)
}

func (s *Service) Post(ctx context.Context, body any) (*request.Future, error) {
	return s.Verb(ctx, request.POST, body)
}

func (s *Service) Put(ctx context.Context, body any) (*request.Future, error) {
	return s.Verb(ctx, request.PUT, body)
}

func (s *Service) Patch(ctx context.Context, body any) (*request.Future, error) {
	return s.Verb(ctx, request.PATCH, body)
}

func (s *Service) Delete(ctx context.Context, body any) (*request.Future, error) {
	return s.Verb(ctx, request.DELETE, body)
}

func (s *Service) Options(ctx context.Context, body any) (*request.Future, error) {
	return s.Verb(ctx, request.OPTIONS, body)
}

func (s *Service) Head(ctx context.Context, body any) (*request.Future, error) {
	return s.Verb(ctx, request.HEAD, body)
}

func (s *Service) Link(ctx context.Context, body any) (*request.Future, error) {
	return s.Verb(ctx, request.LINK, body)
}

// By fetches the entity id. The result is not published.
func (s *Service) By(ctx context.Context, id string) (*request.Future, error) {
	return s.resource.One(id).Get().Send(ctx)
}

// All fetches the collection. The result is not published.
func (s *Service) All(ctx context.Context) (*request.Future, error) {
	return s.resource.All().Get().Send(ctx)
}

// Current fetches the selected entity. With nothing selected it resolves
// to nil without any network call.
func (s *Service) Current(ctx context.Context) (*request.Future, error) {
	id, ok := s.Selected()
	if !ok {
		return request.Resolved(nil), nil
	}
	return s.By(ctx, id)
}

// Select makes id the selected entity and fetches it.
func (s *Service) Select(ctx context.Context, id string) (*request.Future, error) {
	s.mu.Lock()
	s.selected, s.hasSel = id, true
	s.mu.Unlock()
	return s.Current(ctx)
}

// Close drops the subscription to the parent, if any.
func (s *Service) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}
