package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/replayguard/internal/metrics"
)

// WithMetrics instrumenta requests con contadores, latencia e inflight. El label path es
// el patrón de ruta de chi, así que debe correr dentro del router (r.Use).
func WithMetrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method := strings.ToUpper(r.Method)
			metrics.HTTPInflight.WithLabelValues(method).Inc()
			defer metrics.HTTPInflight.WithLabelValues(method).Dec()

			start := time.Now()
			rec := recorderFor(w)
			next.ServeHTTP(rec, r)

			metrics.ObserveHTTP(method, routePattern(r), rec.status, time.Since(start))
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "other"
}
