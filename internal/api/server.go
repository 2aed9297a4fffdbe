package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/critree/internal/config"
	"github.com/dgallion1/critree/internal/criteria"
	"github.com/dgallion1/critree/internal/pathstore"
	"github.com/dgallion1/critree/internal/pipeline"
	"github.com/dgallion1/critree/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for critree.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	store        *store.Store
	mirror       *pathstore.Mirror
	builder      *criteria.Builder
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. mirror may be nil when
// the pathstore mirror is disabled.
func NewServer(orch *pipeline.Orchestrator, st *store.Store, mirror *pathstore.Mirror, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		store:        st,
		mirror:       mirror,
		builder:      criteria.NewBuilder(log),
		log:          log,
		cfg:          cfg,
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
		r.Use(AuthMiddleware(s.cfg.CritreeAPIKey, s.log))

		r.Post("/api/criteria/tag", s.handleTag)
		r.Post("/api/criteria/parse", s.handleParse)

		r.Post("/api/ingest", s.handleIngest)
		r.Get("/api/ingest/{jobID}/status", s.handleIngestStatus)
		r.Post("/api/ingest/batch", s.handleBatchIngest)

		r.Route("/api/studies/{studyID}", func(r chi.Router) {
			r.Get("/criteria", s.handleListCriteria)
			r.Delete("/criteria", s.handleDeleteCriteria)
			r.Get("/mirror", s.handleMirrorView)
		})

		r.Get("/api/stats/build", s.handleBuildStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			jsonError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
