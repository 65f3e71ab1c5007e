package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RouterOptions struct {
	APIToken        string
	RateLimit       int
	RateLimitWindow time.Duration
	// Metrics is served at /metrics when set.
	Metrics http.Handler
	// Observer receives every finished request when set.
	Observer RequestObserver
}

func NewRouter(
	techH *TechnologyHandler,
	serverH *ServerHandler,
	appH *ApplicationHandler,
	remH *RemediationHandler,
	dashH *DashboardHandler,
	catalogH *CatalogHandler,
	opts RouterOptions,
	log *zap.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestIDMiddleware(log))
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	if opts.Observer != nil {
		r.Use(metricsMiddleware(opts.Observer))
	}
	r.Use(bodySizeLimitMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimitMiddleware(opts.RateLimit, opts.RateLimitWindow))
		r.Use(authMiddleware(opts.APIToken))

		r.Route("/technologies", func(r chi.Router) {
			r.Post("/", techH.Create)
			r.Get("/", techH.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", techH.Get)
				r.Put("/", techH.Update)
			})
		})

		r.Route("/servers", func(r chi.Router) {
			r.Post("/", serverH.Create)
			r.Get("/", serverH.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", serverH.Get)
				r.Put("/", serverH.Update)
				r.Get("/technologies", serverH.Technologies)
			})
		})

		r.Route("/applications", func(r chi.Router) {
			r.Post("/", appH.Create)
			r.Get("/", appH.List)
			r.Get("/orphaned", appH.Orphaned)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", appH.Get)
				r.Put("/", appH.Update)
			})
		})

		r.Route("/remediations", func(r chi.Router) {
			r.Post("/", remH.Create)
			r.Get("/", remH.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", remH.Get)
				r.Put("/", remH.Update)
				r.Delete("/", remH.Delete)
			})
		})

		r.Get("/dashboard", dashH.Summary)
		r.Get("/reports/status-drift", dashH.StatusDrift)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", catalogH.Products)
			r.Get("/products/{id}", catalogH.Product)
			r.Get("/instances", catalogH.Instances)
			r.Get("/instances/{id}", catalogH.Instance)
			r.Post("/import", catalogH.Import)
			r.Post("/instances/import", catalogH.ImportInstances)
		})
	})

	return r
}
