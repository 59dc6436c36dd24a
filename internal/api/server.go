package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/t1a2l/SkyTools/internal/config"
	"github.com/t1a2l/SkyTools/internal/profiler"
	"github.com/t1a2l/SkyTools/internal/report"
)

// Server exposes the profiler's lifecycle and report over HTTP for
// diagnostics. The report endpoint serves the same delimited text the
// profiler writes on shutdown.
type Server struct {
	http     *http.Server
	profiler *profiler.Profiler
}

// NewServer creates a diagnostics server for the given profiler.
func NewServer(cfg config.APIConfig, p *profiler.Profiler) *Server {
	s := &Server{profiler: p}

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/report", s.reportHandler).Methods("GET")
	r.HandleFunc("/api/v1/subjects", s.subjectsHandler).Methods("GET")
	r.HandleFunc("/api/v1/snapshot", s.snapshotHandler).Methods("POST")
	r.HandleFunc("/api/v1/start", s.startHandler).Methods("POST")
	r.HandleFunc("/api/v1/stop", s.stopHandler).Methods("POST")

	s.http = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}
	return s
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("API server starting on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("ERROR: API server could not listen on %s: %v", s.http.Addr, err)
		}
	}()
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler returns the server's HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) reportHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.profiler.Dump()))
}

func (s *Server) subjectsHandler(w http.ResponseWriter, r *http.Request) {
	subjects := s.profiler.Subjects()
	names := make([]string, len(subjects))
	for i, subject := range subjects {
		names[i] = subject.String()
	}
	writeJSON(w, map[string]interface{}{
		"session":  s.profiler.SessionID(),
		"running":  s.profiler.Running(),
		"subjects": names,
	})
}

func (s *Server) snapshotHandler(w http.ResponseWriter, r *http.Request) {
	round := s.profiler.MakeSnapshot()
	writeJSON(w, map[string]interface{}{
		"entries": report.SortedEntries(round),
	})
}

func (s *Server) startHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.profiler.Start(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{"running": s.profiler.Running()})
}

func (s *Server) stopHandler(w http.ResponseWriter, r *http.Request) {
	s.profiler.Stop()
	writeJSON(w, map[string]interface{}{"running": s.profiler.Running()})
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("ERROR: failed to encode API response: %v", err)
	}
}
