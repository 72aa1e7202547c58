// Package worker provides runtime configuration, health endpoints, and
// Prometheus metrics for the digest worker process.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"world-digest/internal/pkg/config"
)

// WorkerConfig holds operational settings for the worker process. Delivery
// times and regions live in the YAML application config; this covers the
// knobs that vary per deployment.
type WorkerConfig struct {
	// RunTimeout bounds one full collect→digest→deliver cycle.
	RunTimeout time.Duration
	// CleanupSchedule is the cron expression for the article retention job.
	CleanupSchedule string
	// HealthPort serves /health and /health/ready.
	HealthPort int
	// MetricsPort serves the Prometheus /metrics endpoint.
	MetricsPort int
}

// DefaultConfig returns production-ready defaults: a 30 minute cycle budget,
// nightly cleanup at 04:00, and the usual exporter ports.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		RunTimeout:      30 * time.Minute,
		CleanupSchedule: "0 4 * * *",
		HealthPort:      9091,
		MetricsPort:     9090,
	}
}

// Validate checks all fields, collecting every failure.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidatePositiveDuration(c.RunTimeout); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	}
	if err := config.ValidateCronSchedule(c.CleanupSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cleanup schedule: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads worker settings from the environment with a
// fail-open strategy: invalid values fall back to defaults with a warning
// and a metrics increment instead of refusing to start.
//
// Environment variables:
//   - RUN_TIMEOUT: duration, 1m-4h (default "30m")
//   - CLEANUP_SCHEDULE: cron expression (default "0 4 * * *")
//   - WORKER_HEALTH_PORT: 1024-65535 (default 9091)
//   - METRICS_PORT: 1024-65535 (default 9090)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	result := config.LoadEnvDuration("RUN_TIMEOUT", cfg.RunTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Minute, 4*time.Hour)
	})
	cfg.RunTimeout = result.Value.(time.Duration)
	fallbackApplied = recordFallback(logger, metrics, "run_timeout", result) || fallbackApplied

	result = config.LoadEnvWithFallback("CLEANUP_SCHEDULE", cfg.CleanupSchedule, config.ValidateCronSchedule)
	cfg.CleanupSchedule = result.Value.(string)
	fallbackApplied = recordFallback(logger, metrics, "cleanup_schedule", result) || fallbackApplied

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	fallbackApplied = recordFallback(logger, metrics, "health_port", result) || fallbackApplied

	result = config.LoadEnvInt("METRICS_PORT", cfg.MetricsPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.MetricsPort = result.Value.(int)
	fallbackApplied = recordFallback(logger, metrics, "metrics_port", result) || fallbackApplied

	metrics.SetFallbackActive(fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}

func recordFallback(logger *slog.Logger, metrics *WorkerMetrics, field string, result config.ConfigLoadResult) bool {
	if !result.FallbackApplied {
		return false
	}
	metrics.RecordValidationError(field)
	metrics.RecordFallback(field)
	for _, warning := range result.Warnings {
		logger.Warn("configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
	}
	return true
}
