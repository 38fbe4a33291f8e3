// Package api provides the HTTP API server and handlers for the catalog.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/listenupapp/catalog-server/internal/http/response"
	"github.com/listenupapp/catalog-server/internal/metrics"
	"github.com/listenupapp/catalog-server/internal/search"
	"github.com/listenupapp/catalog-server/internal/sse"
	"github.com/listenupapp/catalog-server/internal/store"
)

// Options configures the HTTP surface.
type Options struct {
	Version     string
	CORSOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store      *store.Store
	services   *Services
	index      *search.CatalogIndex
	sseManager *sse.Manager
	sseHandler *sse.Handler
	metrics    *metrics.Metrics
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured. index,
// sseManager and m may be nil.
func NewServer(
	st *store.Store,
	services *Services,
	index *search.CatalogIndex,
	sseManager *sse.Manager,
	m *metrics.Metrics,
	opts Options,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}

	router := chi.NewRouter()
	s := &Server{
		store:      st,
		services:   services,
		index:      index,
		sseManager: sseManager,
		metrics:    m,
		router:     router,
		logger:     logger,
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("Catalog API", opts.Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerCatalogRoutes()
	s.registerMeRoutes()
	s.registerAdminRoutes()
	s.registerStreamRoutes()

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Route not found", s.logger)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, "Method not allowed", s.logger)
	})

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for OpenAPI export and tests.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(clientIPMiddleware)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	if len(opts.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	s.router.Use(authMiddleware(s.services.Auth))
}

// registerStreamRoutes mounts the endpoints that bypass huma.
func (s *Server) registerStreamRoutes() {
	if s.sseManager != nil {
		s.sseHandler = sse.NewHandler(s.sseManager, streamIdentity, s.logger.With("component", "sse"))
		s.router.Get("/api/v1/events", s.handleEvents)
	}
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}
}
