package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server provides HTTP endpoints for health monitoring.
type Server struct {
	source Snapshotter
	server *http.Server
}

// NewServer creates a new health server reading from the given supervisor.
func NewServer(source Snapshotter, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		source: source,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/detailed", s.handleDetailed)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := statusOf(s.source.Snapshot())

	w.Header().Set("Content-Type", "application/json")
	if status == StatusCritical {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	_ = json.NewEncoder(w).Encode(map[string]string{"status": string(status)})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	snap := s.source.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Status SystemStatus `json:"status"`
		Device any          `json:"device"`
	}{
		Status: statusOf(snap),
		Device: snap,
	})
}
