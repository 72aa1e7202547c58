package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"world-digest/internal/pkg/config"
)

// WorkerMetrics provides Prometheus metrics for the worker process: the
// shared configuration metrics plus cron job execution tracking.
type WorkerMetrics struct {
	*config.ConfigMetrics

	// CronJobRunsTotal counts cron job runs by status (started/success/failure).
	CronJobRunsTotal *prometheus.CounterVec

	// CronJobDurationSeconds measures full-cycle job duration.
	CronJobDurationSeconds prometheus.Histogram

	// CronJobDigestsBuiltTotal counts digests produced across all runs.
	CronJobDigestsBuiltTotal prometheus.Counter

	// CronJobLastSuccessTimestamp records the Unix time of the last
	// successful run, for staleness alerting.
	CronJobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates worker metrics. Registration with the default
// registry happens via promauto; calling this twice panics.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		CronJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of cron job runs by status",
		}, []string{"status"}),

		CronJobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of full digest cycle execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		CronJobDigestsBuiltTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_cron_job_digests_built_total",
			Help: "Total number of digests built across all cron job runs",
		}),

		CronJobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful cron job run",
		}),
	}
}

// MustRegister exists for symmetry with the usual metrics initialization
// pattern; promauto already registered everything in NewWorkerMetrics.
func (m *WorkerMetrics) MustRegister() {}

// RecordJobRun increments the run counter for a status.
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.CronJobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes one job's duration in seconds.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.CronJobDurationSeconds.Observe(seconds)
}

// RecordDigestsBuilt adds the number of digests produced by one run.
func (m *WorkerMetrics) RecordDigestsBuilt(count int) {
	m.CronJobDigestsBuiltTotal.Add(float64(count))
}

// RecordLastSuccess stamps the last successful run at now.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.CronJobLastSuccessTimestamp.SetToCurrentTime()
}
