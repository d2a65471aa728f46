package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FOREMAN_CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foreman.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
db:
  path: /tmp/game.db
simulation:
  tick_interval: 250ms
  refund_fraction: 0.5
rate_limit:
  per_second: 0
`), 0o644))

	t.Setenv("FOREMAN_SERVER_PORT", "9191")
	t.Setenv("FOREMAN_AUTH_ENABLED", "true")
	t.Setenv("FOREMAN_TRANSPORT_MODE", "stdio")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9191, cfg.Server.Port)
	require.Equal(t, "/tmp/game.db", cfg.DB.Path)
	require.Equal(t, 250*time.Millisecond, cfg.Simulation.TickInterval)
	require.Equal(t, 0.5, cfg.Simulation.RefundFraction)
	require.Equal(t, 60.0, cfg.Simulation.InGameSecondsPerTick)
	require.Zero(t, cfg.RateLimit.PerSecond)
	require.True(t, cfg.Auth.Enabled)
	require.Equal(t, "stdio", cfg.Transport.Mode)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "bad port", env: map[string]string{"FOREMAN_SERVER_PORT": "abc"}, want: "FOREMAN_SERVER_PORT"},
		{name: "port out of range", env: map[string]string{"FOREMAN_SERVER_PORT": "70000"}, want: "Port"},
		{name: "unknown level", env: map[string]string{"FOREMAN_LOG_LEVEL": "loud"}, want: "Level"},
		{name: "unknown transport", env: map[string]string{"FOREMAN_TRANSPORT_MODE": "grpc"}, want: "Mode"},
		{name: "bad interval", env: map[string]string{"FOREMAN_TICK_INTERVAL": "soon"}, want: "FOREMAN_TICK_INTERVAL"},
		{name: "bad bool", env: map[string]string{"FOREMAN_AUTH_ENABLED": "maybe"}, want: "FOREMAN_AUTH_ENABLED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FOREMAN_CONFIG_PATH", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestValidateConfig_RefundFraction(t *testing.T) {
	cfg := Default()
	cfg.Simulation.RefundFraction = 1.5
	require.ErrorContains(t, ValidateConfig(&cfg), "RefundFraction")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorContains(t, err, "read config file")
}
