package server

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Server owns the HTTP listener lifecycle: start, serve, graceful stop.
type Server struct {
	httpServer *http.Server
}

const (
	maxHeaderBytes    = 1 << 20 // 1 MB
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

// Run starts serving on the given port ("8080" and ":8080" both work).
// Blocks until the listener fails or Shutdown is called.
//
// No WriteTimeout is set: the /api/ws endpoint holds connections open for
// the lifetime of a viewer session and a server-wide write deadline would
// sever them. The websocket layer enforces its own per-write deadlines.
func (s *Server) Run(port string, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              normalizeAddr(port),
		Handler:           handler,
		MaxHeaderBytes:    maxHeaderBytes,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting new connections and waits for in-flight
// requests up to the context deadline. Open websocket sessions are closed
// by the hub when its context is canceled.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func normalizeAddr(port string) string {
	if port == "" || strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}
