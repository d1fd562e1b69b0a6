// Package health contiene el controller para health checks.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	dto "github.com/dropDatabas3/replayguard/internal/http/dto/health"
	"github.com/dropDatabas3/replayguard/internal/observability/logger"
)

// Registry es la parte del registro de nonces que mira el health check.
type Registry interface {
	Ping(ctx context.Context) error
	Len() int
}

type HealthController struct {
	registry    Registry
	rateEnabled bool
	version     string
	now         func() time.Time
}

func NewHealthController(reg Registry, rateEnabled bool, version string) *HealthController {
	return &HealthController{registry: reg, rateEnabled: rateEnabled, version: version, now: time.Now}
}

// Readyz maneja GET /readyz
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	resp := dto.HealthResponse{
		Status:     "ready",
		Components: map[string]dto.HealthStatus{},
		Version:    c.version,
		Timestamp:  c.now().UTC(),
	}

	if err := c.registry.Ping(ctx); err != nil {
		resp.Status = "unavailable"
		resp.Components["registry"] = dto.HealthStatus{Status: "error", Message: err.Error()}
	} else {
		resp.Components["registry"] = dto.HealthStatus{Status: "ok"}
		resp.Entries = c.registry.Len()
	}

	if c.rateEnabled {
		resp.Components["rate_limit"] = dto.HealthStatus{Status: "ok"}
	} else {
		resp.Components["rate_limit"] = dto.HealthStatus{Status: "disabled"}
	}

	status := http.StatusOK
	if resp.Status == "unavailable" {
		status = http.StatusServiceUnavailable
	}

	log.Debug("health check completed", logger.String("status", resp.Status))

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if c.version != "" {
		w.Header().Set("X-Service-Version", c.version)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
