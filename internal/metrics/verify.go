package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Métricas del pipeline de verificación. Viven en un paquete aparte para que verify y
// http las usen sin ciclos de import.

var (
	VerifyOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "verify_outcomes_total",
		Help: "Resultados del pipeline de verificación por outcome y reason",
	}, []string{"outcome", "reason"})

	VerifyDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "verify_duration_seconds",
		Help:    "Latencia del pipeline de verificación",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12),
	}, []string{"outcome"})

	RateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limited_requests_total",
		Help: "Requests rechazadas por rate limit",
	})
)

// Register registra las métricas de verificación y HTTP en reg (o el default si es nil).
// Registrar dos veces no es error.
func Register(reg prometheus.Registerer) error {
	cs := append([]prometheus.Collector{VerifyOutcomes, VerifyDuration, RateLimited}, httpCollectors()...)
	for _, c := range cs {
		if err := registerCollector(reg, c); err != nil {
			return err
		}
	}
	return nil
}

// RegisterRegistrySize expone la cantidad de nonces registrados como gauge.
func RegisterRegistrySize(reg prometheus.Registerer, size func() int) error {
	g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "nonce_registry_entries",
		Help: "Cantidad de nonce ids registrados",
	}, func() float64 { return float64(size()) })
	return registerCollector(reg, g)
}

// ObserveOutcome registra un resultado del pipeline.
func ObserveOutcome(outcome, reason string, d time.Duration) {
	VerifyOutcomes.WithLabelValues(outcome, reason).Inc()
	VerifyDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func registerCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}
