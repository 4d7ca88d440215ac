package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/dbperm/pkg/authz"
	"github.com/doodlesbykumbi/dbperm/pkg/server/middleware"
	"github.com/doodlesbykumbi/dbperm/pkg/store"
)

// Version is reported by the status endpoint. Overridden at build time.
var Version = "0.1.0"

type Server struct {
	Router      *mux.Router
	Authz       *authz.Service
	HealthStore store.HealthStore
	// JWTMiddleware is nil when authentication is disabled.
	JWTMiddleware *middleware.JWTAuthenticator
	Logger        *zap.Logger

	srv *http.Server
}

type Option func(*Server)

// WithAuthSecret enables HS256 bearer authentication.
func WithAuthSecret(secret string) Option {
	return func(s *Server) {
		if secret != "" {
			s.JWTMiddleware = middleware.NewJWTAuthenticator(secret)
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.Logger = l }
}

// WithAccessLog sets where the Apache-style access log goes. Defaults to
// stdout.
func WithAccessLog(w io.Writer) Option {
	return func(s *Server) {
		s.srv.Handler = handlers.LoggingHandler(w, middleware.RequestID(s.Router))
	}
}

func NewServer(
	svc *authz.Service,
	health store.HealthStore,
	host string,
	port string,
	opts ...Option,
) *Server {
	router := mux.NewRouter().UseEncodedPath()
	srv := &http.Server{
		Handler:           handlers.LoggingHandler(os.Stdout, middleware.RequestID(router)),
		Addr:              net.JoinHostPort(host, port),
		WriteTimeout:      15 * time.Second,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s := &Server{
		Router:      router,
		Authz:       svc,
		HealthStore: health,
		Logger:      zap.NewNop(),
		srv:         srv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the root handler, access logging included.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Protected returns a subrouter whose routes require a bearer token when
// authentication is enabled.
func (s *Server) Protected() *mux.Router {
	r := s.Router.NewRoute().Subrouter()
	if s.JWTMiddleware != nil {
		r.Use(s.JWTMiddleware.Middleware)
	}
	return r
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.Logger.Info("server listening", zap.String("addr", s.srv.Addr))
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Serve is Start on an existing listener.
func (s *Server) Serve(l net.Listener) error {
	err := s.srv.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
