package db

import (
	"context"
	"database/sql"
	"time"

	"world-digest/internal/observability/metrics"
)

// ReportPoolStats publishes connection pool gauges until ctx is cancelled.
func ReportPoolStats(ctx context.Context, pool *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := pool.Stats()
			metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)
		}
	}
}
