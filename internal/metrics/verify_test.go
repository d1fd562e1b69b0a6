package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
}

func TestObserveOutcome(t *testing.T) {
	before := testutil.ToFloat64(VerifyOutcomes.WithLabelValues("replay", "replay_attack"))
	ObserveOutcome("replay", "replay_attack", time.Millisecond)
	after := testutil.ToFloat64(VerifyOutcomes.WithLabelValues("replay", "replay_attack"))
	assert.Equal(t, before+1, after)
}

func TestRegisterRegistrySize(t *testing.T) {
	reg := prometheus.NewRegistry()
	n := 3
	require.NoError(t, RegisterRegistrySize(reg, func() int { return n }))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 1)
	assert.Equal(t, "nonce_registry_entries", mfs[0].GetName())
	assert.Equal(t, float64(3), mfs[0].GetMetric()[0].GetGauge().GetValue())
}

func TestObserveHTTP(t *testing.T) {
	c := HTTPRequests.WithLabelValues("POST", "/api/verify-signature", "409")
	before := testutil.ToFloat64(c)
	ObserveHTTP("POST", "/api/verify-signature", 409, 2*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}
