package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Server wraps an *http.Server to provide start/shutdown lifecycle.
type Server struct {
	mu         sync.Mutex
	httpServer *http.Server
	timeouts   Timeouts
	closed     bool
}

// Timeouts tunes the underlying http.Server. Zero fields use defaults.
type Timeouts struct {
	ReadHeader time.Duration
	Write      time.Duration
	Idle       time.Duration
}

const (
	maxHeaderBytes    = 1 << 20 // 1 MB
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 40 * time.Second // route planning waits on the LLM and OSRM
	idleTimeout       = 60 * time.Second
)

func New(t Timeouts) *Server {
	if t.ReadHeader <= 0 {
		t.ReadHeader = readHeaderTimeout
	}
	if t.Write <= 0 {
		t.Write = writeTimeout
	}
	if t.Idle <= 0 {
		t.Idle = idleTimeout
	}
	return &Server{timeouts: t}
}

// newHTTPServer builds a configured *http.Server for the given address and handler.
func (s *Server) newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		MaxHeaderBytes:    maxHeaderBytes,
		ReadHeaderTimeout: s.timeouts.ReadHeader,
		WriteTimeout:      s.timeouts.Write,
		IdleTimeout:       s.timeouts.Idle,
	}
}

// normalizeAddr ensures the provided port is a valid address (accepts "8080", ":8080" or "host:8080").
func normalizeAddr(port string) string {
	if port == "" {
		return ""
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	if _, _, err := net.SplitHostPort(port); err == nil {
		return port
	}
	return ":" + port
}

// Run serves handler on port until Shutdown. A clean shutdown returns nil.
func (s *Server) Run(port string, handler http.Handler) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if s.timeouts == (Timeouts{}) {
		s.timeouts = New(Timeouts{}).timeouts
	}
	hs := s.newHTTPServer(normalizeAddr(port), handler)
	s.httpServer = hs
	s.mu.Unlock()

	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, allowing in-flight requests to complete.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	hs := s.httpServer
	s.mu.Unlock()

	if hs == nil {
		return nil
	}
	return hs.Shutdown(ctx)
}
