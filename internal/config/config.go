// Package config handles environment variable loading for feature flags,
// ports, storage paths and tunables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all configuration values for the application.
type Config struct {
	// Master kill switch for all mission operations.
	Enabled bool

	// Permits scheduler start/stop/tick to take effect.
	SchedulerEnabled bool

	// Enables the telemetry fan-out.
	TelemetryEnabled bool

	// Tick cadence of the scheduler loop.
	PollingInterval time.Duration

	// Root directory for missions.json and scheduler-state.json.
	DataDir string

	// HTTP server port.
	HTTPPort int

	// Requests per second allowed on the API; 0 means unlimited.
	RateLimit float64

	// Burst size for the API rate limiter.
	RateLimitBurst int

	// OTLP collector address for traces; empty disables tracing.
	OTELEndpoint string

	// Runs payloads carrying a "command" through the shell executor.
	ShellExecutor bool

	// Log level: debug, info, warn, error.
	LogLevel string
}

// Load reads configuration from MISSIONS_* environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Enabled:          true,
		SchedulerEnabled: true,
		TelemetryEnabled: true,
		PollingInterval:  30 * time.Second,
		HTTPPort:         7171,
		RateLimitBurst:   10,
		LogLevel:         "info",
	}

	var err error
	if cfg.Enabled, err = boolEnv("MISSIONS_ENABLED", cfg.Enabled); err != nil {
		return nil, err
	}
	if cfg.SchedulerEnabled, err = boolEnv("MISSIONS_SCHEDULER_ENABLED", cfg.SchedulerEnabled); err != nil {
		return nil, err
	}
	if cfg.TelemetryEnabled, err = boolEnv("MISSIONS_TELEMETRY_ENABLED", cfg.TelemetryEnabled); err != nil {
		return nil, err
	}
	if cfg.ShellExecutor, err = boolEnv("MISSIONS_SHELL_EXECUTOR", cfg.ShellExecutor); err != nil {
		return nil, err
	}

	if v := os.Getenv("MISSIONS_POLLING_INTERVAL_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("invalid MISSIONS_POLLING_INTERVAL_MS: %q", v)
		}
		cfg.PollingInterval = time.Duration(ms) * time.Millisecond
	}

	cfg.DataDir = os.Getenv("MISSIONS_DATA_DIR")
	if cfg.DataDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		cfg.DataDir = filepath.Join(wd, ".data", "missions")
	}

	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %q", v)
		}
		cfg.HTTPPort = p
	}

	if v := os.Getenv("MISSIONS_RATE_LIMIT"); v != "" {
		rl, err := strconv.ParseFloat(v, 64)
		if err != nil || rl < 0 {
			return nil, fmt.Errorf("invalid MISSIONS_RATE_LIMIT: %q", v)
		}
		cfg.RateLimit = rl
	}
	if v := os.Getenv("MISSIONS_RATE_LIMIT_BURST"); v != "" {
		b, err := strconv.Atoi(v)
		if err != nil || b <= 0 {
			return nil, fmt.Errorf("invalid MISSIONS_RATE_LIMIT_BURST: %q", v)
		}
		cfg.RateLimitBurst = b
	}

	cfg.OTELEndpoint = os.Getenv("MISSIONS_OTEL_ENDPOINT")
	if v := os.Getenv("MISSIONS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}

func boolEnv(name string, def bool) (bool, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", name, v)
	}
	return b, nil
}
