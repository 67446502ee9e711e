package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"stockgenius/pkg/stockgenius"
)

// Options configures the router.
type Options struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	Version        string
}

// NewRouter builds the HTTP API router.
func NewRouter(core *stockgenius.Core, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = core.Logger()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLoggingMiddleware(logger))
	r.Use(recoveryLoggingMiddleware(logger))
	r.Use(tracingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h := &handler{core: core, version: opts.Version}

	r.Get("/api/health", h.health)
	r.Get("/api/risk-tiers", h.riskTiers)

	// Recommendations
	r.Post("/api/recommendations/select", h.selectStocks)
	r.Post("/api/recommendations/advice", h.recommendationAdvice)

	// Simulations
	r.Post("/api/simulations", h.simulate)
	r.Post("/api/simulations/narrative", h.simulationNarrative)

	// Comparisons and reports
	r.Post("/api/comparisons", h.compare)
	r.Post("/api/reports", h.report)
	r.Post("/api/reports/narrative", h.reportNarrative)

	// Advice journal
	r.Get("/api/advice-history", h.adviceHistory)

	return r
}

type handler struct {
	core    *stockgenius.Core
	version string
}
