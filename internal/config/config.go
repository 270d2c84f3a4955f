// Package config loads the server settings from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all server settings, populated from environment variables.
type Config struct {
	Port    string
	GridDir string
	// AllowedOrigins is empty when every origin is allowed.
	AllowedOrigins []string
	// MaxPoints caps the number of data values a single request may carry.
	MaxPoints      int
	MetricsEnabled bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	maxPoints, err := strconv.Atoi(getEnv("MAX_POINTS", "4000000"))
	if err != nil || maxPoints <= 0 {
		return nil, fmt.Errorf("invalid MAX_POINTS %q: expected a positive integer", os.Getenv("MAX_POINTS"))
	}

	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid METRICS_ENABLED %q: expected true or false", os.Getenv("METRICS_ENABLED"))
	}

	port := getEnv("PORT", "8080")
	if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
		return nil, fmt.Errorf("invalid PORT %q: expected 1-65535", port)
	}

	return &Config{
		Port:           port,
		GridDir:        getEnv("GRID_DIR", "./data/grids"),
		AllowedOrigins: splitOrigins(os.Getenv("CORS_ALLOWED_ORIGINS")),
		MaxPoints:      maxPoints,
		MetricsEnabled: metricsEnabled,
	}, nil
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
