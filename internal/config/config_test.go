package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "GRID_DIR", "CORS_ALLOWED_ORIGINS", "MAX_POINTS", "METRICS_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./data/grids", cfg.GridDir)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Equal(t, 4000000, cfg.MaxPoints)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("GRID_DIR", "/srv/grids")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("MAX_POINTS", "1000")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "/srv/grids", cfg.GridDir)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 1000, cfg.MaxPoints)
	assert.False(t, cfg.MetricsEnabled)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"max points not a number", "MAX_POINTS", "lots"},
		{"max points zero", "MAX_POINTS", "0"},
		{"metrics not a bool", "METRICS_ENABLED", "maybe"},
		{"port not a number", "PORT", "http"},
		{"port out of range", "PORT", "70000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
