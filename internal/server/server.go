// Package server runs the todopath HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/todopath/todopath/internal/api"
	"github.com/todopath/todopath/internal/service"
	"github.com/todopath/todopath/internal/store"
)

const (
	// DefaultAddress is the default address the server listens on.
	DefaultAddress = "localhost:7532"
	// ShutdownTimeout bounds how long in-flight requests may run once the
	// server is asked to stop.
	ShutdownTimeout = 30 * time.Second
)

// Server serves every project stored under one data directory.
type Server struct {
	http    *http.Server
	manager *store.Manager
	logger  *log.Logger

	mu       sync.Mutex
	listener net.Listener
	ready    chan struct{}
}

// New creates a server on addr (DefaultAddress when empty) backed by the
// manager's project databases. opts configure every project's PlanService.
func New(addr string, manager *store.Manager, logger *log.Logger, opts ...service.Option) *Server {
	if addr == "" {
		addr = DefaultAddress
	}

	opts = append([]service.Option{service.WithLogger(logger)}, opts...)
	registry := service.NewRegistry(service.SQLiteOpener(manager, opts...))

	return &Server{
		http: &http.Server{
			Addr:         addr,
			Handler:      api.NewRouter(manager, registry, logger),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		manager: manager,
		logger:  logger,
		ready:   make(chan struct{}),
	}
}

// Ready is closed once the server is listening.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address, or "" before the server is listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run serves until ctx is done, then drains in-flight requests for up to
// ShutdownTimeout and closes the project databases. A clean stop returns nil.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	close(s.ready)

	s.logger.Printf("Server listening on %s", ln.Addr())

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.http.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		s.closeManager()
		return err
	case <-ctx.Done():
	}

	s.logger.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	err = s.http.Shutdown(shutdownCtx)
	if serr := <-serveErr; serr != nil && !errors.Is(serr, http.ErrServerClosed) && err == nil {
		err = serr
	}
	s.closeManager()

	s.logger.Println("Server stopped")
	return err
}

func (s *Server) closeManager() {
	if err := s.manager.Close(); err != nil {
		s.logger.Printf("Warning: error closing database manager: %v", err)
	}
}

// ListenAndServe runs the server until SIGINT or SIGTERM.
func (s *Server) ListenAndServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}
