// Package api provides the HTTP surface of the lead funnel service.
//
// It exposes a health endpoint and a read-only listing of archived leads
// for the operator. The conversational flow itself runs over the
// messaging channel, not HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/BTreeMap/LeadFunnel/internal/store"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// DefaultShutdownTimeout bounds how long Stop waits for in-flight
// requests to finish.
const DefaultShutdownTimeout = 10 * time.Second

// Opts holds configuration options for the API server.
type Opts struct {
	Addr string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr overrides the default listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server serves the operator-facing HTTP endpoints.
type Server struct {
	archive store.Store
	httpSrv *http.Server
}

// NewServer builds the API server around the lead archive.
func NewServer(archive store.Store, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	s := &Server{archive: archive}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/leads", s.leadsHandler)
	s.httpSrv = &http.Server{Addr: cfg.Addr, Handler: mux}
	return s
}

// Start begins serving in a background goroutine and returns immediately.
func (s *Server) Start() {
	slog.Info("API server starting", "addr", s.httpSrv.Addr)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("API server terminated", "error", err)
		}
	}()
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultShutdownTimeout)
	defer cancel()
	slog.Info("API server stopping")
	return s.httpSrv.Shutdown(ctx)
}
