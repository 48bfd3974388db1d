// Package server exposes the pipeline over HTTP: an SSE stream endpoint for
// enriched segments and a small prompt-configuration API.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"
)

// URLResolver maps a user-supplied episode URL to a direct audio URL.
type URLResolver interface {
	Resolve(ctx context.Context, rawURL string) (string, error)
}

// Config for the HTTP server.
type Config struct {
	ListenAddr string
	DevMode    bool
}

// Server hosts the streaming and prompt endpoints. Each stream request gets
// its own pipeline coordinator from the factory, so session state never leaks
// between listeners.
type Server struct {
	config   Config
	factory  CoordinatorFactory
	resolver URLResolver
	prompts  PromptStore
	httpSrv  *http.Server
}

func New(config Config, factory CoordinatorFactory, resolver URLResolver, prompts PromptStore) *Server {
	s := &Server{
		config:   config,
		factory:  factory,
		resolver: resolver,
		prompts:  prompts,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/stream", s.handleStream)
	mux.HandleFunc("/api/prompt", s.handlePrompt)
	mux.HandleFunc("/api/health", s.handleHealth)

	s.httpSrv = &http.Server{
		Addr:              config.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the route mux, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Start listens and serves until Shutdown. Blocks.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.ListenAddr, err)
	}
	log.Printf("server: listening on %s", ln.Addr())

	if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok"}`)
}
