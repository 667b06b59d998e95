package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/pkg/config"
)

// WorkerMetrics provides Prometheus metrics for the worker process. It
// embeds ConfigMetrics for configuration-load observability and adds
// per-job execution tracking. The job label distinguishes the rebuild
// pass from the token refresh sweep.
type WorkerMetrics struct {
	*config.ConfigMetrics

	// JobRunsTotal counts cron job runs by job name and outcome.
	JobRunsTotal *prometheus.CounterVec

	// JobDurationSeconds measures how long one job run takes.
	JobDurationSeconds *prometheus.HistogramVec

	// UsersProcessedTotal counts users handled across rebuild runs.
	UsersProcessedTotal prometheus.Counter

	// JobLastSuccessTimestamp is the Unix time of the last successful run
	// per job, for staleness alerting.
	JobLastSuccessTimestamp *prometheus.GaugeVec
}

// NewWorkerMetrics creates and registers the worker metrics.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		JobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_runs_total",
			Help: "Total number of cron job runs by job and status",
		}, []string{"job", "status"}),

		JobDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of cron job runs",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}, []string{"job"}),

		UsersProcessedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_users_processed_total",
			Help: "Total number of users processed by rebuild runs",
		}),

		JobLastSuccessTimestamp: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful run per job",
		}, []string{"job"}),
	}
}

// RecordJobRun counts one job run with the given outcome.
func (m *WorkerMetrics) RecordJobRun(job, status string) {
	m.JobRunsTotal.WithLabelValues(job, status).Inc()
}

// RecordJobDuration observes one job run's duration in seconds.
func (m *WorkerMetrics) RecordJobDuration(job string, seconds float64) {
	m.JobDurationSeconds.WithLabelValues(job).Observe(seconds)
}

// RecordUsersProcessed adds the number of users handled by one rebuild run.
func (m *WorkerMetrics) RecordUsersProcessed(count int) {
	m.UsersProcessedTotal.Add(float64(count))
}

// RecordLastSuccess stamps the current time as the job's last success.
func (m *WorkerMetrics) RecordLastSuccess(job string) {
	m.JobLastSuccessTimestamp.WithLabelValues(job).SetToCurrentTime()
}
