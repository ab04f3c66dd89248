package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/card-advisor-go/internal/domain"
	"github.com/boddenberg/card-advisor-go/internal/infra/observability"
	"github.com/boddenberg/card-advisor-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// svc may be nil, in which case only the operational endpoints answer.
func NewRouter(svc *service.AdvisorService, metrics *observability.Metrics, limiter *rate.Limiter, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc))
	r.Get("/readyz", readyzHandler(svc))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	if svc == nil {
		return r
	}

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Use(RateLimitMiddleware(limiter, logger))

		r.Post("/recommendations", recommendHandler(svc, logger))

		r.Get("/cards", listCardsHandler(svc))
		r.Get("/cards/{name}/window", billingWindowHandler(svc, logger))
		r.Get("/cards/{name}/artwork", artworkHandler(svc, logger))
		r.Get("/categories", listCategoriesHandler(svc))

		r.Get("/metrics/advisor", advisorMetricsHandler(svc, metrics))
	})

	return r
}

// ============================================================
// Health
// ============================================================

func healthzHandler(svc *service.AdvisorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		components := []domain.ComponentHealth{
			{Name: "advisor-api", Status: "healthy", LastChecked: now},
		}

		catalogHealth := domain.ComponentHealth{Name: "catalog", Status: "healthy", LastChecked: now}
		switch {
		case svc == nil:
			catalogHealth.Status = "unhealthy"
			catalogHealth.Detail = "not loaded"
		case len(svc.CardNames()) == 0:
			catalogHealth.Status = "degraded"
			catalogHealth.Detail = "no cards"
		}
		components = append(components, catalogHealth)

		overall := "healthy"
		for _, c := range components {
			if c.Status == "unhealthy" {
				overall = "unhealthy"
				break
			}
			if c.Status == "degraded" {
				overall = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:     overall,
			Components: components,
		})
	}
}

func readyzHandler(svc *service.AdvisorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func advisorMetricsHandler(svc *service.AdvisorService, metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot(svc.CardNames()))
	}
}
