package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Radioacti1ve/MEOWShop/internal/service"
	"github.com/Radioacti1ve/MEOWShop/pkg/health"
	"github.com/Radioacti1ve/MEOWShop/pkg/middleware"
)

// NewRouter creates a chi router with all catalog routes registered.
func NewRouter(
	searchService *service.SearchService,
	catalogService *service.CatalogService,
	syncService *service.SyncService,
	healthHandler *health.Handler,
	corsCfg CORSConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(corsCfg))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("catalog"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	catalogHandler := NewCatalogHandler(searchService, catalogService, logger)
	adminHandler := NewAdminHandler(syncService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/search", func(r chi.Router) {
			r.Get("/suggest", catalogHandler.Suggest)
			r.Get("/", catalogHandler.Search)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalogHandler.ListProducts)
			r.Get("/{id}", catalogHandler.ProductDetail)
			r.Get("/{id}/similar", catalogHandler.Similar)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Post("/reindex", adminHandler.Reindex)
			r.Post("/reindex/{id}", adminHandler.ReindexProduct)
			r.Delete("/index/{id}", adminHandler.RemoveProduct)
		})
	})

	return r
}
