package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/ops-console-bfa-go/internal/domain"
	"github.com/boddenberg/ops-console-bfa-go/internal/infra/observability"
	"github.com/boddenberg/ops-console-bfa-go/internal/port"
	"github.com/boddenberg/ops-console-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// A nil verifier leaves the assistant API open.
func NewRouter(svc *service.Assistant, catalog port.CatalogFetcher, verifier *service.TokenVerifier, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(catalog, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 1. 🤖 Assistente do console
		// =============================================
		r.Group(func(r chi.Router) {
			if verifier != nil {
				r.Use(JWTAuthMiddleware(verifier, logger))
			}

			r.Post("/assistant/sessions", createSessionHandler(svc, logger))
			r.Delete("/assistant/sessions/{sessionId}", closeSessionHandler(svc, logger))
			r.Get("/assistant/sessions/{sessionId}/turns", listTurnsHandler(svc, logger))
			r.Post("/assistant/sessions/{sessionId}/messages", sendMessageHandler(svc, logger))
			r.Post("/assistant/sessions/{sessionId}/snapshot", reloadSnapshotHandler(svc, logger))
			r.Post("/assistant/sessions/{sessionId}/shortcuts", shortcutHandler(svc, logger))
			r.Post("/assistant/classify", classifyHandler(svc, logger))
		})

		// =============================================
		// 2. 📊 Métricas
		// GET /v1/metrics/assistant
		// =============================================
		r.Get("/metrics/assistant", assistantMetricsHandler(metrics))
	})

	return r
}

// ============================================================
// Operational
// ============================================================

func healthzHandler(catalog port.CatalogFetcher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "bfa-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if catalog != nil {
			start := time.Now()
			_, err := catalog.ListServices(r.Context())
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				logger.Warn("healthz: catalog degraded", zap.Error(err))
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "catalog", Status: status, LatencyMs: latency, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func assistantMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetAssistantSnapshot())
	}
}
