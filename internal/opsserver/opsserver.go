// Package opsserver runs the HTTP side-channel the arena server exposes
// next to its raw-TCP game port: a Prometheus /metrics handler and a
// JSON /healthz handler. Grounded on the teacher's go-server-2/server.go
// Start/handleHealth/handleStats trio — the mux-plus-http.Server shape
// and the health JSON payload are carried over directly; the stats
// handler's byte/message counters are dropped since this server has no
// equivalent wire-level counters to report (arena_* counters live in
// Prometheus instead, not duplicated here).
package opsserver

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"arenad/internal/metrics"
)

// Server is the ops HTTP listener. It is optional; the reactor and
// combat protocol never depend on it.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

// New builds an ops Server bound to addr, exposing /healthz and
// /metrics. The registry itself is never touched from this goroutine —
// it is owned exclusively by the reactor — so the connection count
// reported here comes from metrics.Metrics' atomic counter instead of a
// direct registry read.
func New(addr string, m *metrics.Metrics, sampler *metrics.SystemSampler, logger *log.Logger) *Server {
	mux := http.NewServeMux()
	s := &Server{logger: logger}

	mux.HandleFunc("/healthz", s.handleHealthz(m, sampler))
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Start runs the HTTP listener in the background and returns immediately;
// Serve errors are logged asynchronously.
func (s *Server) Start() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("[opsserver] serve error: %v", err)
		}
	}()
}

// Shutdown gracefully stops the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthz(m *metrics.Metrics, sampler *metrics.SystemSampler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sampler.Sample()
		snap := sampler.Snapshot()

		body := map[string]interface{}{
			"status":      "healthy",
			"connections": m.ActiveConnections(),
			"uptime":      m.Uptime().Seconds(),
			"system":      snap,
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(body); err != nil {
			s.logger.Printf("[opsserver] encode error: %v", err)
		}
	}
}
