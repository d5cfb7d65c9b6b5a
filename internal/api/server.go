// Package api provides the HTTP API server and handlers for the clip
// caption service.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/droth0951/audio2-sub001/internal/service"
	"github.com/droth0951/audio2-sub001/internal/store"
)

const apiVersion = "1.0.0"

// Server holds dependencies for HTTP handlers.
type Server struct {
	store  *store.Store
	clips  *service.ClipService
	router *chi.Mux
	api    huma.API
	logger *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st *store.Store, clips *service.ClipService, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		store:  st,
		clips:  clips,
		router: router,
		logger: logger,
	}

	s.setupMiddleware()

	s.api = humachi.New(router, huma.DefaultConfig("Clip Caption Service", apiVersion))
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerClipRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}
