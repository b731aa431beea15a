package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/docshield/docshield/internal/auth"
	"github.com/docshield/docshield/internal/documents"
	"github.com/docshield/docshield/internal/observability"
	"github.com/docshield/docshield/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthHandler      *auth.Handler
	DocumentsHandler *documents.Handler
	UsersHandler     *users.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with DocShield defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if params.Config != nil && params.Config.AuthRateLimit > 0 {
				r.Use(httprate.LimitByIP(params.Config.AuthRateLimit, params.Config.AuthRateWindow))
			}
			params.AuthHandler.MountRoutes(r)
		})
		r.Route("/documents", func(r chi.Router) {
			params.DocumentsHandler.MountRoutes(r)
		})
		r.Route("/users", func(r chi.Router) {
			params.UsersHandler.MountRoutes(r)
		})
	})

	return r
}
