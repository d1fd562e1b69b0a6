package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:3000", c.Server.Addr)
	assert.Equal(t, 30*time.Second, c.Verify.FreshnessWindow)
	assert.Equal(t, "window", c.Registry.Backend)
	assert.True(t, c.Rate.Enabled)
	assert.Equal(t, 10, c.Rate.Limit)
	assert.Equal(t, time.Minute, c.Rate.Window)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "verifier.yaml")
	yml := `
app:
  env: prod
server:
  addr: ":9000"
verify:
  freshness_window: 10s
registry:
  backend: set
rate:
  limit: 3
  window: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("RATE_LIMIT", "7")
	t.Setenv("VERIFY_FRESHNESS_WINDOW", "20s")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", c.App.Env)
	assert.Equal(t, ":9000", c.Server.Addr)
	assert.Equal(t, "set", c.Registry.Backend)
	assert.Equal(t, 20*time.Second, c.Verify.FreshnessWindow, "env wins over yaml")
	assert.Equal(t, 7, c.Rate.Limit)
	assert.Equal(t, 30*time.Second, c.Rate.Window)
	// no tocado por el YAML: queda el default
	assert.Equal(t, 5*time.Second, c.Registry.Margin)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("bad_backend", func(t *testing.T) {
		t.Setenv("REGISTRY_BACKEND", "etcd")
		_, err := Load("")
		assert.ErrorContains(t, err, "registry.backend")
	})
	t.Run("bad_duration", func(t *testing.T) {
		t.Setenv("RATE_WINDOW", "soon")
		_, err := Load("")
		assert.ErrorContains(t, err, "RATE_WINDOW")
	})
	t.Run("zero_window", func(t *testing.T) {
		t.Setenv("VERIFY_FRESHNESS_WINDOW", "0s")
		_, err := Load("")
		assert.ErrorContains(t, err, "freshness_window")
	})
	t.Run("rate_disabled_skips_rate_checks", func(t *testing.T) {
		t.Setenv("RATE_ENABLED", "false")
		t.Setenv("RATE_BACKEND", "nope")
		_, err := Load("")
		assert.NoError(t, err)
	})
	t.Run("missing_file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
