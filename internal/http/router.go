package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig bundles the handlers and cross-cutting options for the API.
type RouterConfig struct {
	Generation *GenerationHandler
	Schedules  *ScheduleHandler
	// Health reports storage liveness for the health endpoint.
	Health func(ctx context.Context) error
	// AllowedOrigins configures CORS for the admin dashboard. Empty means
	// same-origin only.
	AllowedOrigins []string
	Middleware     []func(http.Handler) http.Handler
}

// NewRouter assembles the API routes.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	for _, mw := range cfg.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(req.Context()); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		if cfg.Schedules != nil {
			r.Get("/schedules", cfg.Schedules.List)
			r.Get("/schedules/{id}", cfg.Schedules.Get)
		}
		if cfg.Generation != nil {
			r.Post("/schedules/{id}/generate", cfg.Generation.GenerateForSchedule)
			r.Post("/schedules/generate-all", cfg.Generation.GenerateAll)
			r.Post("/generation/due", cfg.Generation.GenerateDue)
		}
	})

	return r
}
