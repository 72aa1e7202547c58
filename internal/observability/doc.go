// Package observability provides observability infrastructure for the
// digest pipeline, including structured logging and Prometheus metrics.
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: Prometheus metrics registry and recorders
//
// Example usage:
//
//	import (
//	    "world-digest/internal/observability/logging"
//	    "world-digest/internal/observability/metrics"
//	)
package observability
