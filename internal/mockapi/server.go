package mockapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/restkit/component"
	"github.com/kbukum/restkit/logger"
)

const shutdownTimeout = 5 * time.Second

// Server is the mock REST API as a lifecycle component.
type Server struct {
	cfg     Config
	store   *Store
	handler http.Handler
	log     *logger.Logger

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
}

var (
	_ component.Component   = (*Server)(nil)
	_ component.Describable = (*Server)(nil)
)

// New builds a server over store. A nil store starts empty.
func New(cfg Config, store *Store, log *logger.Logger) *Server {
	cfg.ApplyDefaults()
	if store == nil {
		store = NewStore()
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	if log.Level() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{cfg: cfg, store: store, log: log.WithComponent("mockapi")}
	engine := gin.New()
	engine.Use(recovery(s.log), requestID(), requestLogger(s.log))
	s.routes(engine)

	s.handler = h2c.NewHandler(engine, &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          time.Duration(cfg.IdleTimeout) * time.Second,
	})
	return s
}

// Handler returns the API handler, for mounting or httptest.
func (s *Server) Handler() http.Handler { return s.handler }

// Store returns the backing store.
func (s *Server) Store() *Store { return s.store }

func (s *Server) Name() string { return "mockapi" }

// Start binds the listener and serves in the background. It returns once
// the port is bound.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return fmt.Errorf("mockapi already started")
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("mockapi failed to bind %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeout) * time.Second,
	}
	s.srv, s.listener = srv, ln

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("serve failed", logger.MergeWithError(nil, err))
		}
	}()
	s.log.Info("mock api listening", logger.Fields("addr", ln.Addr().String()))
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv, s.listener = nil, nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("mockapi shutdown: %w", err)
	}
	return nil
}

// URL returns the base URL of the running server, "" when stopped.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return "http://" + s.listener.Addr().String()
}

func (s *Server) Health(ctx context.Context) component.Health {
	h := component.Health{Name: s.Name(), Status: component.StatusHealthy}
	if s.URL() == "" {
		h.Status, h.Message = component.StatusUnhealthy, "not listening"
	}
	return h
}

func (s *Server) Describe() component.Description {
	return component.Description{
		Type:    "server",
		Details: net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port)),
	}
}
