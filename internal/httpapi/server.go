// Package httpapi exposes the goal use cases over HTTP.
//
// Callers are authenticated upstream; the identity proxy asserts the caller's
// email in the X-Authenticated-Email header. When a token is configured every
// goal route also requires "Authorization: Bearer <token>".
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/alexanderramin/ambitions/internal/service"
)

// EmailHeader carries the authenticated caller's email.
const EmailHeader = "X-Authenticated-Email"

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

type Server struct {
	goals     service.GoalService
	lifecycle service.LifecycleService
	people    service.PersonService
	token     string
	logger    *slog.Logger
	health    func(context.Context) error

	mu         sync.RWMutex
	httpServer *http.Server
	listener   net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithToken requires a bearer token on every goal route.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithHealthCheck makes /healthz report unhealthy when check fails.
func WithHealthCheck(check func(context.Context) error) Option {
	return func(s *Server) { s.health = check }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewServer(svcs *service.Services, opts ...Option) *Server {
	s := &Server{
		goals:     svcs.Goals,
		lifecycle: svcs.Lifecycle,
		people:    svcs.People,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler. Tests drive it with httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.Handle("GET /goals", s.authed(s.handleListGoals))
	mux.Handle("POST /goals", s.authed(s.handleCreateGoal))
	mux.Handle("GET /goals/{id}", s.authed(s.handleGetGoal))
	mux.Handle("PATCH /goals/{id}", s.authed(s.handleEditGoal))
	mux.Handle("DELETE /goals/{id}", s.authed(s.handleDeleteGoal))
	mux.Handle("PATCH /goals/{id}/status", s.authed(s.handlePatchStatus))
	mux.Handle("GET /people", s.authed(s.handleListPeople))

	return s.traced(s.logged(mux))
}

// Serve listens on addr and serves until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) Serve(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		// Requests keep ctx's values but not its cancellation, so shutdown drains them.
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	s.mu.Lock()
	s.httpServer, s.listener = srv, ln
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("http server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}

// Addr returns the bound address once Serve has started listening.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
