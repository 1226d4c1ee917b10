// Package server exposes the Prometheus endpoint and health probes of a
// running scheduling session.
//
// The server lives only as long as one `opsched run`: it starts before the
// first level is dispatched and drains after the report is written.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"
)

// Probe status values
const (
	StatusHealthy  = "healthy"
	StatusDraining = "draining"
)

// Server serves /metrics and the health probes of one run.
type Server struct {
	httpServer      *http.Server
	listener        net.Listener
	inShutdown      atomic.Bool
	shutdownTimeout time.Duration
}

// Config holds server configuration.
type Config struct {
	// Address is the listen address (e.g., ":9090", "127.0.0.1:0")
	Address string

	// ShutdownTimeout is the maximum time to wait for scrapes to drain during shutdown.
	// Defaults to 5 seconds if not specified.
	ShutdownTimeout time.Duration

	// ReadTimeout is the maximum duration for reading the entire request.
	// Defaults to 10 seconds if not specified.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// Defaults to 10 seconds if not specified.
	WriteTimeout time.Duration
}

// ProbeResult is the JSON body of a health probe
type ProbeResult struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// NewServer creates a server exposing metricsHandler at /metrics.
func NewServer(metricsHandler http.Handler, cfg Config) *Server {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	s := &Server{shutdownTimeout: cfg.ShutdownTimeout}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsHandler)
	mux.HandleFunc("/health/live", s.handleLiveness)
	mux.HandleFunc("/health/ready", s.handleReadiness)

	s.httpServer = &http.Server{
		Addr:              cfg.Address,
		Handler:           mux,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	return s
}

// Start binds the listen address and serves in the background.
// Bind errors are returned synchronously so a bad --metrics-addr fails the
// command before any item runs.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	s.listener = ln

	go func() {
		_ = s.httpServer.Serve(ln)
	}()
	return nil
}

// Addr returns the bound address, useful when listening on port 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.httpServer.Addr
	}
	return s.listener.Addr().String()
}

// Shutdown marks the server as draining and waits for in-flight scrapes
// (up to ShutdownTimeout) before closing it.
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.httpServer.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}

// IsShuttingDown returns whether the server is shutting down.
func (s *Server) IsShuttingDown() bool {
	return s.inShutdown.Load()
}

func (s *Server) writeProbeResponse(w http.ResponseWriter, status string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	result := ProbeResult{Status: status, Timestamp: time.Now().UTC()}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode response: %v", err), http.StatusInternalServerError)
	}
}

// handleLiveness handles GET /health/live. It always answers 200 while the
// process serves requests.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.inShutdown.Load() {
		s.writeProbeResponse(w, StatusDraining, http.StatusOK)
		return
	}
	s.writeProbeResponse(w, StatusHealthy, http.StatusOK)
}

// handleReadiness handles GET /health/ready: 503 once the run has finished
// and the server drains.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.inShutdown.Load() {
		s.writeProbeResponse(w, StatusDraining, http.StatusServiceUnavailable)
		return
	}
	s.writeProbeResponse(w, StatusHealthy, http.StatusOK)
}
