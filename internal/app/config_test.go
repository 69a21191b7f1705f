package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join("testdata")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)

	require.Equal(t, 45*time.Minute, cfg.Session.IdleTimeout)
	require.Equal(t, 48, cfg.Session.TokenLength)
	require.False(t, cfg.Session.Sweep.Enabled)
	require.Equal(t, "@every 10m", cfg.Session.Sweep.Schedule)

	require.Equal(t, "root", cfg.Bootstrap.AdminUserID)
	require.Equal(t, "root", cfg.Bootstrap.AdminLogin)
	require.Equal(t, "super-secret", cfg.Bootstrap.AdminPassword)

	require.False(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/internal/metrics", cfg.Monitoring.Prometheus.Endpoint)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	require.Equal(t, 32, cfg.Session.TokenLength)
	require.True(t, cfg.Session.Sweep.Enabled)
	require.Equal(t, "@hourly", cfg.Session.Sweep.Schedule)
	require.Equal(t, "admin", cfg.Bootstrap.AdminLogin)
	require.Empty(t, cfg.Bootstrap.AdminPassword)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("AUTHCORE_SERVER_PORT", "7777")
	t.Setenv("AUTHCORE_SESSION_IDLE_TIMEOUT", "5m")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 7777, cfg.Server.Port)
	require.Equal(t, 5*time.Minute, cfg.Session.IdleTimeout)
}
