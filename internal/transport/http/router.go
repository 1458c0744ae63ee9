package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kycgate/internal/platform/health"
	"kycgate/internal/platform/metrics"
	"kycgate/internal/platform/middleware"
	"kycgate/pkg/httputil"
)

// NewRouter wires the public endpoints with the middleware stack.
func NewRouter(h *Handler, healthHandler *health.Handler, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/", handleBanner)

	r.With(latency(m, "register")).Post("/users/", h.handleRegister)
	r.With(latency(m, "get_user")).Get("/users/{id}", h.handleGetUser)

	healthHandler.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func handleBanner(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"service": "kycgate",
		"status":  "running",
	})
}

// latency records endpoint duration in the Prometheus histogram.
func latency(m *metrics.Metrics, endpoint string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			next.ServeHTTP(w, r)
			m.ObserveEndpointLatency(endpoint, time.Since(start).Seconds())
		})
	}
}
