// Package api provides the HTTP API server and handlers for the
// SoundVault application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/soundvaultapp/soundvault-server/internal/http/response"
	"github.com/soundvaultapp/soundvault-server/internal/library"
	"github.com/soundvaultapp/soundvault-server/internal/playback"
	"github.com/soundvaultapp/soundvault-server/internal/ratelimit"
	"github.com/soundvaultapp/soundvault-server/internal/session"
	"github.com/soundvaultapp/soundvault-server/internal/sse"
	"github.com/soundvaultapp/soundvault-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	router     *chi.Mux
	api        huma.API
	library    *library.Service
	sessions   *session.Manager
	playback   *playback.Registry
	sseHandler *sse.Handler
	validate   *validation.Validator
	logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	librarySvc *library.Service,
	sessions *session.Manager,
	registry *playback.Registry,
	sseHandler *sse.Handler,
	validate *validation.Validator,
	logger *slog.Logger,
) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		library:    librarySvc,
		sessions:   sessions,
		playback:   registry,
		sseHandler: sseHandler,
		validate:   validate,
		logger:     logger,
	}

	s.setupMiddleware()

	RegisterErrorHandler()
	config := huma.DefaultConfig("SoundVault API", "1.0.0")
	config.DocsPath = "/docs"
	s.api = humachi.New(s.router, config)

	s.registerSessionRoutes()
	s.registerSoundRoutes()
	s.registerCategoryRoutes()
	s.registerTaggingRoutes()
	s.setupRawRoutes()

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
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(writeLimiter(ratelimit.New(10, 20)))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// writeLimiter rate-limits mutating requests per client. Reads are
// unlimited so browsing and playback stay responsive.
func writeLimiter(limiter *ratelimit.KeyedRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := limiter.Middleware(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
			default:
				limited.ServeHTTP(w, r)
			}
		})
	}
}

// setupRawRoutes configures routes that bypass huma: streaming bodies
// and long-lived connections don't fit the typed request/response model.
func (s *Server) setupRawRoutes() {
	s.router.Get("/health", s.handleHealthCheck)
	s.router.Get("/api/v1/playback/{token}", s.handlePlayback)
	s.router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
