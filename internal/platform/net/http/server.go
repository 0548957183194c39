package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"reviewnexus/internal/platform/config"
	"reviewnexus/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server wraps chi and the stdlib http.Server with graceful shutdown
type Server struct {
	addr string
	mux  *chi.Mux
	srv  *stdhttp.Server
}

// NewServer builds a server listening on API_PORT.
// opts receive the *chi.Mux so callers can install middleware before routes mount
func NewServer(cfg config.Conf, opts ...func(*chi.Mux)) *Server {
	addr := cfg.MayString("API_PORT", ":4000")
	m := chi.NewRouter()
	for _, o := range opts {
		o(m)
	}
	return &Server{
		addr: addr,
		mux:  m,
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Router returns the Router facade over the internal mux
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// Addr returns the configured listen address
func (s *Server) Addr() string { return s.addr }

// Run starts listening and blocks until the server closes
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")
	log.Info().Str("addr", s.addr).Msg("http listening")
	if err := s.srv.ListenAndServe(); err != stdhttp.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
