// Package httpapi exposes the cache's operational surface over HTTP for
// dashboards and probes. It is read-only: mutation stays with the bot.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/plexcord/plexcord/internal/cache"
)

type Server struct {
	srv    *http.Server
	cache  *cache.Store
	logger *slog.Logger
}

func New(addr string, cacheStore *cache.Store, logger *slog.Logger) *Server {
	s := &Server{cache: cacheStore, logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/cache/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/cache/info", s.handleInfo).Methods(http.MethodGet)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start serves until Shutdown. It blocks, so run it in its own goroutine.
func (s *Server) Start() error {
	s.logger.Info("http api listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.cache.Stats())
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.cache.DetailedInfo())
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("http response encode", "err", err)
	}
}
