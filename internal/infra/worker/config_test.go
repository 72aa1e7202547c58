package worker

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// promauto registers with the default registry, so all tests share one
// metrics instance.
var (
	metricsOnce sync.Once
	testMetrics *WorkerMetrics
)

func sharedMetrics() *WorkerMetrics {
	metricsOnce.Do(func() {
		testMetrics = NewWorkerMetrics()
	})
	return testMetrics
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.RunTimeout != 30*time.Minute {
		t.Errorf("RunTimeout = %v, want 30m", cfg.RunTimeout)
	}
	if cfg.CleanupSchedule != "0 4 * * *" {
		t.Errorf("CleanupSchedule = %q", cfg.CleanupSchedule)
	}
	if cfg.HealthPort != 9091 {
		t.Errorf("HealthPort = %d, want 9091", cfg.HealthPort)
	}
	if cfg.MetricsPort != 9090 {
		t.Errorf("MetricsPort = %d, want 9090", cfg.MetricsPort)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should validate: %v", err)
	}
}

func TestWorkerConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*WorkerConfig)
	}{
		{"zero run timeout", func(c *WorkerConfig) { c.RunTimeout = 0 }},
		{"bad cleanup schedule", func(c *WorkerConfig) { c.CleanupSchedule = "not-cron" }},
		{"privileged health port", func(c *WorkerConfig) { c.HealthPort = 80 }},
		{"metrics port out of range", func(c *WorkerConfig) { c.MetricsPort = 70000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() expected error")
			}
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("RUN_TIMEOUT", "45m")
	t.Setenv("CLEANUP_SCHEDULE", "30 3 * * *")
	t.Setenv("WORKER_HEALTH_PORT", "8081")
	t.Setenv("METRICS_PORT", "8082")

	cfg, err := LoadConfigFromEnv(discardLogger(), sharedMetrics())
	if err != nil {
		t.Fatalf("LoadConfigFromEnv() error = %v", err)
	}

	if cfg.RunTimeout != 45*time.Minute {
		t.Errorf("RunTimeout = %v, want 45m", cfg.RunTimeout)
	}
	if cfg.CleanupSchedule != "30 3 * * *" {
		t.Errorf("CleanupSchedule = %q", cfg.CleanupSchedule)
	}
	if cfg.HealthPort != 8081 || cfg.MetricsPort != 8082 {
		t.Errorf("ports = %d/%d, want 8081/8082", cfg.HealthPort, cfg.MetricsPort)
	}
}

func TestLoadConfigFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("RUN_TIMEOUT", "10h") // above the 4h ceiling
	t.Setenv("CLEANUP_SCHEDULE", "whenever")
	t.Setenv("WORKER_HEALTH_PORT", "80")

	cfg, err := LoadConfigFromEnv(discardLogger(), sharedMetrics())
	if err != nil {
		t.Fatalf("LoadConfigFromEnv() error = %v", err)
	}

	defaults := DefaultConfig()
	if cfg.RunTimeout != defaults.RunTimeout {
		t.Errorf("RunTimeout = %v, want default %v", cfg.RunTimeout, defaults.RunTimeout)
	}
	if cfg.CleanupSchedule != defaults.CleanupSchedule {
		t.Errorf("CleanupSchedule = %q, want default", cfg.CleanupSchedule)
	}
	if cfg.HealthPort != defaults.HealthPort {
		t.Errorf("HealthPort = %d, want default %d", cfg.HealthPort, defaults.HealthPort)
	}
}
