// Package health provides the HTTP health check and metrics endpoint.
//
// Besides the usual liveness/readiness pair, the readiness report probes the
// collaborating backends. A dead VOICEVOX does not make the service unready
// since speech degrades to the mock tone, but the report notes the degradation
// so operators can see it.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Probe reports whether a collaborator is reachable.
type Probe func(ctx context.Context) bool

type check struct {
	name     string
	probe    Probe
	required bool
	degraded string // message reported when a non-required probe fails
}

// Server is a lightweight HTTP server exposing /healthz, /readyz and /metrics.
type Server struct {
	port   int
	ready  atomic.Bool
	checks []check
	server *http.Server
}

// New creates a new health check server.
func New(port int) *Server {
	return &Server{port: port}
}

// AddCheck registers a dependency probe. Required probes gate readiness;
// optional ones only annotate the report with the degraded message.
func (s *Server) AddCheck(name string, probe Probe, required bool, degraded string) {
	s.checks = append(s.checks, check{name: name, probe: probe, required: required, degraded: degraded})
}

// SetReady marks the daemon as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

type report struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// ListenAndServe starts the health check HTTP server.
// It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(report{Status: "not_ready"})
			return
		}
		_ = json.NewEncoder(w).Encode(report{Status: "ok"})
	})

	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.Handle("GET /metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("health server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	rep := report{Status: "ok", Dependencies: make(map[string]string, len(s.checks))}
	healthy := s.ready.Load()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	for _, c := range s.checks {
		if c.probe(ctx) {
			rep.Dependencies[c.name] = "ok"
			continue
		}
		if c.required {
			rep.Dependencies[c.name] = "unreachable"
			healthy = false
		} else {
			rep.Dependencies[c.name] = c.degraded
		}
	}

	if !healthy {
		rep.Status = "not_ready"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(rep)
}
