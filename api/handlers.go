// Package api exposes the run-history and trigger endpoints served in
// serve mode.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"devopsctl/events"
	"devopsctl/runner"
	"devopsctl/runner/storage"
)

// Server wires the HTTP API to a single pipeline instance and its
// storage. Concurrent trigger requests race for the pipeline's
// in-progress guard; the loser gets 409.
type Server struct {
	cfg      *runner.Config
	pipeline *runner.Pipeline
	store    *storage.Storage
}

// NewServer creates the API server.
func NewServer(cfg *runner.Config, pipeline *runner.Pipeline, store *storage.Storage) *Server {
	return &Server{cfg: cfg, pipeline: pipeline, store: store}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/runs", s.getRuns)
		r.Get("/runs/{id}", s.getRun)
		r.Post("/run", s.postRun)
		r.Get("/stats", s.getStats)
		r.Get("/stages", s.getStages)
		r.Get("/events", SSEHandler())
	})

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// getRuns returns the most recent runs.
func (s *Server) getRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.GetRuns(100)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get runs: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, runs)
}

// getRun returns a single run with its stage executions.
func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	runID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid run ID", http.StatusBadRequest)
		return
	}

	run, err := s.store.GetRun(runID)
	if err != nil {
		http.Error(w, fmt.Sprintf("run not found: %v", err), http.StatusNotFound)
		return
	}

	stages, err := s.store.GetStageExecutions(runID)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get stages: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"run":    run,
		"stages": stages,
	})
}

// postRun triggers a pipeline run. The body may name a single stage.
func (s *Server) postRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Stage  string `json:"stage,omitempty"`
		Branch string `json:"branch,omitempty"`
	}
	if r.Body != nil {
		// An empty body means a full run.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if req.Stage != "" {
		found := false
		for _, st := range s.pipeline.Stages() {
			if st.Name == req.Stage {
				found = true
				break
			}
		}
		if !found {
			http.Error(w, fmt.Sprintf("unknown stage %q", req.Stage), http.StatusBadRequest)
			return
		}
	}

	rc, err := s.cfg.BuildContext(req.Branch)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to build run context: %v", err), http.StatusInternalServerError)
		return
	}

	if s.pipeline.Busy() {
		http.Error(w, "a run is already in progress", http.StatusConflict)
		return
	}

	s.startRun(rc, req.Stage)

	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]any{
		"status":  "started",
		"package": rc.Package,
		"stage":   req.Stage,
	})
}

// startRun launches the run in the background. The pipeline's own
// guard still rejects a run that slipped past the Busy check.
func (s *Server) startRun(rc runner.RunContext, only string) {
	broker := events.GetBroker()

	go func() {
		broker.Broadcast("run_started", map[string]any{
			"package": rc.Package,
			"trigger": "api",
		})

		report, err := s.pipeline.Run(context.Background(), rc, runner.RunOptions{
			Store:     s.store,
			OnlyStage: only,
		})
		if errors.Is(err, runner.ErrRunInProgress) {
			log.Printf("api-triggered run skipped: already running")
			return
		}
		if err != nil {
			log.Printf("api-triggered run failed: %v", err)
			broker.Broadcast("run_failed", map[string]any{"package": rc.Package})
			return
		}

		broker.Broadcast("run_finished", map[string]any{
			"package": rc.Package,
			"run_id":  report.RunID,
			"overall": report.Overall,
		})
	}()
}

// getStats returns per-stage aggregates.
func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStageStats()
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get stats: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}

// getStages returns the registered stage names in execution order.
func (s *Server) getStages(w http.ResponseWriter, r *http.Request) {
	stages := s.pipeline.Stages()
	names := make([]string, 0, len(stages))
	for _, st := range stages {
		names = append(names, st.Name)
	}
	writeJSON(w, map[string]any{
		"package": s.cfg.Package,
		"stages":  names,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
