package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	readHeaderTimeout      = 10 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// Server hosts the REST handler for command binaries. Zero-value fields
// fall back to sensible defaults.
type Server struct {
	Addr            string
	Handler         http.Handler
	ShutdownTimeout time.Duration
}

// NewServer builds a Server around NewHandler(reg, opts...).
func NewServer(addr string, reg Registry, opts ...Option) *Server {
	return &Server{
		Addr:    addr,
		Handler: NewHandler(reg, opts...),
	}
}

// ListenAndServe runs the HTTP server until the context ends, then shuts
// down gracefully, draining in-flight requests up to ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	timeout := s.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	httpServer := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
