// Package server provides the JSON HTTP API of gtadmin.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/diogenes-ai-code/gtadmin/internal/backend"
	"github.com/diogenes-ai-code/gtadmin/internal/store"
)

// Backend is the hosted-service surface the API exposes. It is satisfied
// by *backend.Client.
type Backend interface {
	SignIn(ctx context.Context, email, password string) (*backend.Session, error)
	SignOut(ctx context.Context) error
	Session() *backend.Session
	Households(ctx context.Context) ([]*backend.Household, error)
	Members(ctx context.Context, householdID string) ([]*backend.Member, error)
	Invitations(ctx context.Context, householdID string) ([]*backend.Invitation, error)
	RoomActivity(ctx context.Context, configID string, days int) ([]*backend.RoomActivity, error)
}

// Config holds the server configuration.
type Config struct {
	// Port is the TCP port to listen on (default 18090).
	Port int

	// Host is the address to bind to (default "localhost").
	Host string

	// Store is the project store.
	Store *store.Store

	// Backend is the hosted backend client. Nil when none is configured;
	// the household routes then answer 503.
	Backend Backend

	// Logger for request and lifecycle logs (optional).
	Logger *slog.Logger

	// Now overrides the clock (tests).
	Now func() time.Time
}

// Server is the HTTP server of the gtadmin API.
type Server struct {
	config     Config
	httpServer *http.Server
	router     *http.ServeMux
	logger     *slog.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) (*Server, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("project store is required")
	}

	if config.Port == 0 {
		config.Port = 18090
	}
	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: config,
		router: http.NewServeMux(),
		logger: logger.With("component", "server"),
	}
	s.setupRoutes()

	return s, nil
}

// Handler returns the API handler with request logging applied.
func (s *Server) Handler() http.Handler {
	return s.withRequestLog(s.withRecover(s.router))
}

// Start listens and serves until Shutdown is called.
func (s *Server) Start() error {
	addr := s.Address()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting server", "url", "http://"+listener.Addr().String())
	return s.httpServer.Serve(listener)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(ctx)
}

// Address returns the server address (e.g., "localhost:18090").
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
