package transport

import (
	"fmt"
	"sync"

	"github.com/kbukum/restkit/logger"
)

// Constructor builds a Transport or reports why it cannot.
type Constructor func() (Transport, error)

// Factory obtains a Transport: the native constructor first, then each
// fallback identifier in order, resolved through the registry.
type Factory struct {
	Native    Constructor
	Fallbacks []string

	mu       sync.RWMutex
	registry map[string]Constructor
	log      *logger.Logger
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithFallbacks replaces the ordered fallback identifiers.
func WithFallbacks(ids ...string) FactoryOption {
	return func(f *Factory) { f.Fallbacks = append([]string(nil), ids...) }
}

// WithConstructor registers a constructor for a fallback identifier.
func WithConstructor(id string, c Constructor) FactoryOption {
	return func(f *Factory) { f.registry[id] = c }
}

// WithLogger sets the factory logger.
func WithLogger(l *logger.Logger) FactoryOption {
	return func(f *Factory) { f.log = l }
}

// NewFactory returns a factory trying native first and then
// LegacyIdentifiers. native may be nil.
func NewFactory(native Constructor, opts ...FactoryOption) *Factory {
	f := &Factory{
		Native:    native,
		Fallbacks: append([]string(nil), LegacyIdentifiers...),
		registry:  make(map[string]Constructor),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = logger.WithComponent("transport")
	}
	return f
}

// Register binds a constructor to a fallback identifier.
func (f *Factory) Register(id string, c Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registry[id] = c
}

// Create returns the first transport that can be constructed without error,
// or nil when none is available.
func (f *Factory) Create() Transport {
	if t := f.try("native", f.Native); t != nil {
		return t
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, id := range f.Fallbacks {
		if t := f.try(id, f.registry[id]); t != nil {
			return t
		}
	}

	f.log.Warn("no compatible transport")
	return nil
}

func (f *Factory) try(id string, c Constructor) (t Transport) {
	if c == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			f.log.Debug("transport candidate panicked", logger.Fields(logger.FieldTransport, id, "panic", fmt.Sprint(r)))
			t = nil
		}
	}()

	t, err := c()
	if err != nil {
		f.log.Debug("transport candidate unavailable", logger.MergeWithError(logger.Fields(logger.FieldTransport, id), err))
		return nil
	}
	if t == nil {
		return nil
	}
	f.log.Debug("transport created", logger.Fields(logger.FieldTransport, id))
	return t
}

var (
	defaultFactoryOnce sync.Once
	defaultFactory     *Factory
)

// Default returns the process-wide factory whose native constructor builds
// HTTP transports on DefaultClient.
func Default() *Factory {
	defaultFactoryOnce.Do(func() {
		defaultFactory = NewFactory(func() (Transport, error) {
			return NewHTTP(nil), nil
		})
	})
	return defaultFactory
}

// Create obtains a transport from the default factory.
func Create() Transport {
	return Default().Create()
}
