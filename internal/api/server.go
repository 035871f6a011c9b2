// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api serves the research job HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/research-agent/internal/export"
	"github.com/pdiddy/research-agent/internal/jobs"
	"github.com/pdiddy/research-agent/internal/logging"
	"github.com/pdiddy/research-agent/pkg/types"
)

const apiPrefix = "/api/v1"

// Submitter starts research jobs.
type Submitter interface {
	Submit(ctx context.Context, req types.ResearchRequest) (*types.Job, error)
}

// Options configure a Server. DocumentsDir, when set, is served under
// /documents/.
type Options struct {
	Store        jobs.Store
	Runner       Submitter
	Version      string
	Log          logging.Logger
	Now          func() time.Time
	Services     Services
	DocumentsDir string
}

// Services reports which optional integrations are configured.
type Services struct {
	DocumentExport bool
	Webhook        bool
	LLM            bool
}

type Server struct {
	store    jobs.Store
	runner   Submitter
	version  string
	log      logging.Logger
	now      func() time.Time
	services Services
	docsDir  string
}

func NewServer(o Options) *Server {
	s := &Server{
		store:    o.Store,
		runner:   o.Runner,
		version:  o.Version,
		log:      o.Log,
		now:      o.Now,
		services: o.Services,
		docsDir:  o.DocumentsDir,
	}
	if s.log == nil {
		s.log = logging.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.root)
	r.Handle("/metrics", promhttp.Handler())

	r.Route(apiPrefix, func(r chi.Router) {
		r.Post("/research", s.createResearch)
		r.Get("/research/{id}", s.getResearch)
		r.Get("/research/{id}/status", s.getStatus)
		r.Get("/jobs", s.listJobs)
		r.Get("/health", s.health)
	})

	if s.docsDir != "" {
		r.Handle(export.RoutePrefix+"*", http.StripPrefix(export.RoutePrefix, http.FileServer(http.Dir(s.docsDir))))
	}
	return r
}

// Start serves the router on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", logging.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		if r.URL.Path == "/metrics" {
			return
		}
		s.log.Debug("http request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Duration("duration", time.Since(start)),
			logging.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Research Agent API",
		"version": s.version,
		"health":  apiPrefix + "/health",
	})
}

type healthResponse struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Version   string          `json:"version"`
	Services  map[string]bool `json:"services"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:    "healthy",
		Timestamp: s.now().UTC(),
		Version:   s.version,
		Services: map[string]bool{
			"document_export": s.services.DocumentExport,
			"webhook":         s.services.Webhook,
			"llm":             s.services.LLM,
			"store":           true,
		},
	}
	if err := s.store.Ping(ctx); err != nil {
		s.log.Warn("store ping failed", logging.Err(err))
		resp.Status = "degraded"
		resp.Services["store"] = false
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}
