// Package api exposes a simulation session over HTTP as a thin JSON
// facade. Orchestration services drive experiments through it; all
// semantics live in the app layer.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cellvm/app"
	"cellvm/internal"
)

// Server wraps one session behind a chi router.
type Server struct {
	router  *chi.Mux
	session *app.Session
	log     *internal.Logger
}

// NewServer builds the HTTP facade for a session.
func NewServer(session *app.Session, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:  chi.NewRouter(),
		session: session,
		log:     logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/vessels", s.handleSeedVessel)
		r.Get("/vessels", s.handleListVessels)
		r.Get("/vessels/{id}", s.handleGetVessel)
		r.Post("/vessels/{id}/treat", s.handleTreat)
		r.Post("/vessels/{id}/passage", s.handlePassage)
		r.Post("/vessels/{id}/feed", s.handleFeed)
		r.Post("/vessels/{id}/assays/{type}", s.handleAssay)
		r.Post("/advance", s.handleAdvance)
		r.Get("/audit", s.handleAudit)
		r.Get("/violations", s.handleViolations)
	})
}

// ServeHTTP makes the server mountable in any mux.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info("api listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}
