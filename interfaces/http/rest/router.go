package rest

import (
	"net/http"

	"learnpath-backend/application/services"
	"learnpath-backend/infrastructure/config"
	"learnpath-backend/interfaces/http/rest/handlers"
	"learnpath-backend/interfaces/http/rest/middleware"
	"learnpath-backend/pkg/auth"
	"learnpath-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg       *config.Config
	service   *services.ProgressService
	validator *auth.JWTValidator
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	service *services.ProgressService,
	validator *auth.JWTValidator,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:       cfg,
		service:   service,
		validator: validator,
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-User-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	errorHandler := errors.NewErrorHandler(rt.logger, rt.cfg.IsDevelopment())
	pathHandler := handlers.NewPathHandler(rt.service, rt.logger, errorHandler)
	itemHandler := handlers.NewItemHandler(rt.service, rt.logger, errorHandler)

	router.Route("/api/v1", func(r chi.Router) {
		// The identity middleware only carries the caller's id inward;
		// actual authentication lives upstream.
		r.Use(middleware.Identity(rt.validator, rt.cfg.IsDevelopment(), rt.logger))

		r.Route("/paths", func(r chi.Router) {
			r.Get("/", pathHandler.ListPaths)
			r.Get("/{pathID}", pathHandler.GetPath)
			r.Put("/{pathID}", pathHandler.StorePath)
			r.Get("/{pathID}/progress", pathHandler.GetPathProgress)
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/{itemID}", itemHandler.GetItem)
			r.Post("/{itemID}/feedback", itemHandler.SubmitFeedback)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
