package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tradepost/tradepost/internal/categories"
	"github.com/tradepost/tradepost/internal/listings"
	"github.com/tradepost/tradepost/internal/observability"
	"github.com/tradepost/tradepost/internal/selections"
	"github.com/tradepost/tradepost/internal/shared"
	"github.com/tradepost/tradepost/internal/users"
	"github.com/tradepost/tradepost/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	SessionManager    *shared.SessionManager
	CSRFManager       *shared.CSRFManager
	Principals        PrincipalResolver
	CategoriesHandler *categories.Handler
	ListingsHandler   *listings.Handler
	SelectionsHandler *selections.Handler
	UsersHandler      *users.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Tradepost defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Principals:     params.Principals,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/cat", params.CategoriesHandler.MountRoutes)
	r.Route("/ads", params.ListingsHandler.MountRoutes)
	r.Route("/selections", params.SelectionsHandler.MountRoutes)
	if params.UsersHandler != nil {
		r.Route("/users", params.UsersHandler.MountRoutes)
		r.Route("/locations", params.UsersHandler.MountLocationRoutes)
	}

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.Config != nil && params.Config.MediaDir != "" {
		fileServer := http.StripPrefix("/media/", http.FileServer(http.Dir(params.Config.MediaDir)))
		r.Handle("/media/*", mediaCacheHandler(fileServer))
	}

	return r
}

// mediaCacheHandler wraps the media file server with Cache-Control headers.
// Uploaded images never change under the same name, so browsers may cache
// them for an hour.
func mediaCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
