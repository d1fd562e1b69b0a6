// Package router arma el http.Handler del verifier sobre chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	healthctrl "github.com/dropDatabas3/replayguard/internal/http/controllers/health"
	verifyctrl "github.com/dropDatabas3/replayguard/internal/http/controllers/verify"
	httperrors "github.com/dropDatabas3/replayguard/internal/http/errors"
	mw "github.com/dropDatabas3/replayguard/internal/http/middlewares"
	"github.com/dropDatabas3/replayguard/internal/rate"
)

// VerifyPath es la ruta que usan los holders.
const VerifyPath = "/api/verify-signature"

// Deps contiene las dependencias del router.
type Deps struct {
	Verify *verifyctrl.VerifyController
	Health *healthctrl.HealthController

	// Metrics sirve /metrics; nil no expone la ruta.
	Metrics http.Handler
	// RateLimiter protege solo la ruta de verificación; nil lo desactiva.
	RateLimiter rate.Limiter
}

// New registra las rutas:
//
//	POST /api/verify-signature  recover → request id → logging → metrics → security headers → rate limit → no-store
//	GET  /readyz
//	GET  /metrics
func New(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithMetrics(),
		mw.WithSecurityHeaders(),
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	// Rate limit y no-store solo en la ruta de verificación.
	r.Method(http.MethodPost, VerifyPath, mw.Chain(
		http.HandlerFunc(deps.Verify.VerifySignature),
		mw.WithRateLimit(mw.RateLimitConfig{Limiter: deps.RateLimiter, KeyFunc: mw.IPOnlyRateKey}),
		mw.WithNoStore(),
	))

	if deps.Health != nil {
		r.With(mw.WithNoStore()).Get("/readyz", deps.Health.Readyz)
	}
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
	return r
}
