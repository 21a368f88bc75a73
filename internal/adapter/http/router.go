package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/iho/fundflow/internal/adapter/http/handler"
	"github.com/iho/fundflow/internal/adapter/http/middleware"
	"github.com/iho/fundflow/internal/infrastructure/metrics"
	"github.com/iho/fundflow/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	FundHandler         *handler.FundHandler
	CapitalCallHandler  *handler.CapitalCallHandler
	DistributionHandler *handler.DistributionHandler
	AttributionHandler  *handler.AttributionHandler
	CalculatorHandler   *handler.CalculatorHandler
	HealthHandler       *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	// AllowedOrigins turns on CORS when non-empty.
	AllowedOrigins []string

	Logger zerolog.Logger
	// Metrics and MetricsHandler are optional; /metrics is only mounted when MetricsHandler is set.
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", middleware.IdempotencyKeyHeader},
			ExposedHeaders:   []string{chimiddleware.RequestIDHeader, middleware.IdempotencyReplayHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
		}

		r.Route("/funds", func(r chi.Router) {
			r.Post("/", cfg.FundHandler.Create)
			r.Get("/", cfg.FundHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.FundHandler.Get)
				r.Post("/investors", cfg.FundHandler.OnboardInvestor)
				r.Get("/investors", cfg.FundHandler.ListInvestors)
				r.Post("/capital-calls", cfg.CapitalCallHandler.Issue)
				r.Get("/capital-calls", cfg.CapitalCallHandler.ListByFund)
				r.Post("/distributions", cfg.DistributionHandler.Execute)
				r.Get("/distributions", cfg.DistributionHandler.ListByFund)
				r.Get("/attribution", cfg.AttributionHandler.Fund)
				r.Get("/reconciliation", cfg.AttributionHandler.Reconcile)
			})
		})

		r.Route("/investors/{id}", func(r chi.Router) {
			r.Get("/", cfg.FundHandler.GetInvestor)
			r.Get("/attribution", cfg.AttributionHandler.Investor)
		})

		r.Get("/capital-calls/{id}", cfg.CapitalCallHandler.Get)
		r.Get("/distributions/{id}", cfg.DistributionHandler.Get)

		// Stateless engine endpoints
		r.Route("/calculators", func(r chi.Router) {
			r.Post("/capital-call", cfg.CalculatorHandler.CapitalCall)
			r.Post("/waterfall", cfg.CalculatorHandler.Waterfall)
			r.Post("/attribution", cfg.CalculatorHandler.Attribution)
			r.Get("/withholding/{domicile}", cfg.CalculatorHandler.Withholding)
		})
	})

	return r
}
