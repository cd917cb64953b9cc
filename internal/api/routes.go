package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/ethiocal/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET    /health
//	GET    /metrics                                    (METRICS_ENABLED)
//	GET    /api/v1/today?calendar=&style=
//	GET    /api/v1/convert/gregorian/{date}
//	GET    /api/v1/convert/ethiopian/{year}/{month}/{day}
//	GET    /api/v1/format?date=&from=&calendar=&style=
//	GET    /api/v1/parse?q=
//	POST   /api/v1/ethiopian/add
//	POST   /api/v1/ethiopian/compare
//	GET    /api/v1/ethiopian/years/{year}
//	GET    /api/v1/ethiopian/months/{year}/{month}
//	GET    /api/v1/days/{date}
//	GET    /api/v1/holidays?month=                     (X-API-Key)
//	POST   /api/v1/holidays                            (X-API-Key)
//	DELETE /api/v1/holidays/{id}                       (X-API-Key)
//
// Holiday routes are only mounted when the handlers have a database.
// limiter and metrics may be nil.
func SetupRoutes(handlers *Handlers, cfg *config.Config, logger *slog.Logger, metrics *Metrics, limiter *IPRateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(ChainMiddleware(
		RecoveryMiddleware(logger),
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
		MetricsMiddleware(metrics),
		CORSMiddleware(),
	))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "METHOD_NOT_ALLOWED")
	})

	// ==========================================================================
	// Operational routes (not rate limited)
	// ==========================================================================
	r.Get("/health", handlers.HealthCheck)
	if cfg.MetricsEnabled && metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimitMiddleware(limiter, metrics, logger))

		// ======================================================================
		// Public routes
		// ======================================================================
		r.Get("/today", handlers.GetToday)
		r.Get("/convert/gregorian/{date}", handlers.ConvertGregorian)
		r.Get("/convert/ethiopian/{year}/{month}/{day}", handlers.ConvertEthiopian)
		r.Get("/format", handlers.FormatDate)
		r.Get("/parse", handlers.ParseDate)
		r.Get("/days/{date}", handlers.GetDay)

		r.Route("/ethiopian", func(r chi.Router) {
			r.Post("/add", handlers.AddDays)
			r.Post("/compare", handlers.CompareDates)
			r.Get("/years/{year}", handlers.GetYear)
			r.Get("/months/{year}/{month}", handlers.GetMonth)
		})

		// ======================================================================
		// Admin routes (API key)
		// ======================================================================
		if handlers.db != nil {
			r.Route("/holidays", func(r chi.Router) {
				r.Use(AuthMiddleware(cfg, logger))
				r.Get("/", handlers.ListHolidays)
				r.Post("/", handlers.CreateHoliday)
				r.Delete("/{id}", handlers.DeleteHoliday)
			})
		}
	})

	return r
}
