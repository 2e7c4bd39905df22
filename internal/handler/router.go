package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/scanlink/scanlink/internal/middleware"
	"github.com/scanlink/scanlink/internal/route"
)

// RouterConfig bundles the handlers and settings the router needs.
type RouterConfig struct {
	Create      *CreateHandler
	Manage      *ManageHandler
	Resolve     *ResolveHandler
	Health      *HealthHandler
	Metrics     *MetricsHandler
	Logger      *slog.Logger
	MaxBodySize int64
}

// NewRouter assembles the full route table: the JSON API under /api, the
// health and metrics endpoints, and one resolution route per known path
// segment plus the bare-code fallback.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.SecurityHeaders)
	// Dynamic responses must never be cached by intermediaries.
	r.Use(middleware.NoCache)

	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)

	if cfg.Metrics != nil {
		r.Get("/metrics", cfg.Metrics.Metrics)
	}

	maxBody := cfg.MaxBodySize
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.CORS())
		api.Use(middleware.MaxBodySize(maxBody))

		api.Post("/create", cfg.Create.Create)
		api.Get("/manage", cfg.Manage.List)
		api.Delete("/manage", cfg.Manage.Delete)
	})

	for _, seg := range route.Segments() {
		r.Get("/"+seg+"/{code}", cfg.Resolve.Resolve)
	}
	r.Get("/{code}", cfg.Resolve.Resolve)

	r.NotFound(cfg.Resolve.NotFoundPage)
	r.MethodNotAllowed(MethodNotAllowed)

	return r
}
