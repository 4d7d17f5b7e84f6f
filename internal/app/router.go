package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/lattice-commerce/lattice-catalog/internal/catalog/assignments"
	"github.com/lattice-commerce/lattice-catalog/internal/catalog/attributes"
	"github.com/lattice-commerce/lattice-catalog/internal/catalog/attrsets"
	"github.com/lattice-commerce/lattice-catalog/internal/catalog/categories"
	"github.com/lattice-commerce/lattice-catalog/internal/catalog/guard"
	"github.com/lattice-commerce/lattice-catalog/internal/catalog/products"
	"github.com/lattice-commerce/lattice-catalog/internal/catalog/tags"
	"github.com/lattice-commerce/lattice-catalog/internal/shared"
)

// CatalogServices bundles the core services for embedding callers. External
// command layers mount on top of these; the router itself only uses them for
// operational introspection.
type CatalogServices struct {
	Categories  *categories.Service
	Attributes  *attributes.Service
	Sets        *attrsets.Service
	Products    *products.Service
	Assignments *assignments.Service
	Tags        *tags.Service
	Guard       *guard.Guard
}

// RouterParams groups dependencies for building the operational router.
// Catalog mutations flow through the service layer directly; the HTTP
// surface exposes liveness, readiness and a status summary only.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	Catalog *CatalogServices
}

// NewRouter constructs the chi.Router with catalog defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if params.Pool != nil {
			if err := params.Pool.Ping(r.Context()); err != nil {
				params.Logger.Error("readiness: postgres ping failed", slog.Any("error", err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"postgres unavailable"}`))
				return
			}
		}
		if params.Redis != nil {
			if err := params.Redis.Ping(r.Context()).Err(); err != nil {
				params.Logger.Error("readiness: redis ping failed", slog.Any("error", err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"redis unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	if params.Catalog != nil {
		r.Get("/statusz", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, categoriesTotal, err := params.Catalog.Categories.List(r.Context(), shared.ListFilters{Limit: 1})
			if err != nil {
				params.Logger.Error("statusz: list categories", slog.Any("error", err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"catalog unavailable"}`))
				return
			}
			_, setsTotal, err := params.Catalog.Sets.List(r.Context(), shared.ListFilters{Limit: 1})
			if err != nil {
				params.Logger.Error("statusz: list attribute sets", slog.Any("error", err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"catalog unavailable"}`))
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = fmt.Fprintf(w, `{"categories":%d,"attribute_sets":%d}`, categoriesTotal, setsTotal)
		})
	}

	return r
}
