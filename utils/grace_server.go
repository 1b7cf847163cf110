package utils

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

const (
	DefaultReadTimeout = 60 * time.Second
	// zero: event streams stay open for the whole session
	DefaultWriteTimeout    = 0
	DefaultShutdownTimeout = 30 * time.Second
)

// Server wraps http.Server with signal-driven graceful shutdown. Hooks run
// after the listener stops accepting requests, so in-memory state can be
// flushed once no award is in flight.
type Server struct {
	*http.Server

	shutdownTimeout time.Duration
	hooks           []func(context.Context) error
}

// NewServer creates a Server with timeouts and handler.
func NewServer(addr string, handler http.Handler, readTimeout, writeTimeout time.Duration) *Server {
	return &Server{
		Server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		shutdownTimeout: DefaultShutdownTimeout,
	}
}

// OnShutdown registers fn to run during graceful shutdown.
func (srv *Server) OnShutdown(fn func(context.Context) error) {
	srv.hooks = append(srv.hooks, fn)
}

// ListenAndServe serves until SIGINT/SIGTERM, then shuts down gracefully.
func (srv *Server) ListenAndServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

// Run serves until ctx is done or the listener fails.
func (srv *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	return srv.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (srv *Server) Serve(ctx context.Context, ln net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Server.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		Sugar.Info("shutdown signal received, graceful shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), srv.shutdownTimeout)
	defer cancel()
	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		Sugar.Errorf("HTTP server shutdown error: %v", err)
		errs = append(errs, err)
	}
	for _, hook := range srv.hooks {
		if err := hook(shutdownCtx); err != nil {
			Sugar.Errorf("shutdown hook failed: %v", err)
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		Sugar.Info("HTTP server shutdown success")
	}
	return errors.Join(errs...)
}

// GraceServer starts an HTTP server with graceful shutdown and optional hooks.
func GraceServer(addr string, handler http.Handler, hooks ...func(context.Context) error) error {
	srv := NewServer(addr, handler, DefaultReadTimeout, DefaultWriteTimeout)
	for _, h := range hooks {
		srv.OnShutdown(h)
	}
	return srv.ListenAndServe()
}
