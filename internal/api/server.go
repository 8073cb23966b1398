package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dgallion1/docmind/internal/config"
	"github.com/dgallion1/docmind/internal/doctree"
	"github.com/dgallion1/docmind/internal/generate"
	"github.com/dgallion1/docmind/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Pipeline is the part of *pipeline.Pipeline the API serves.
type Pipeline interface {
	IngestFile(ctx context.Context, path string) (pipeline.IngestSummary, error)
	Ask(ctx context.Context, question, chapter string) (pipeline.Answer, error)
	Status() pipeline.Status
	Structure() *doctree.Document
}

// Server is the HTTP API server for docmind.
type Server struct {
	router   chi.Router
	pipeline Pipeline
	stats    *generate.LLMStats
	model    string
	log      *slog.Logger
	cfg      config.ServerConfig
}

// NewServer creates and configures the HTTP server. stats may be nil.
func NewServer(p Pipeline, stats *generate.LLMStats, model string, log *slog.Logger, cfg config.ServerConfig) *Server {
	s := &Server{
		pipeline: p,
		stats:    stats,
		model:    model,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/documents", s.handleUpload)
		r.Post("/api/ask", s.handleAsk)
		r.Get("/api/status", s.handleStatus)
		r.Get("/api/structure", s.handleStructure)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
