// Package server exposes the builder over a small JSON HTTP API.
package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/engine"
	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/session"
	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/storage"
)

// Server wires the HTTP handlers to the agent loop and its collaborators.
type Server struct {
	loop     *engine.Loop
	gateway  engine.Gateway
	files    *storage.Store
	sessions *session.Store
	log      zerolog.Logger
}

// New builds a Server.
func New(loop *engine.Loop, gateway engine.Gateway, files *storage.Store, sessions *session.Store, log zerolog.Logger) *Server {
	return &Server{
		loop:     loop,
		gateway:  gateway,
		files:    files,
		sessions: sessions,
		log:      log,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("DELETE /api/projects/{name}", s.handleDeleteProject)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return s.logRequests(mux)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
