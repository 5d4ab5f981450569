package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backupRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backhaul_backup_runs_total",
		Help: "Completed backup runs by terminal status",
	}, []string{"status"})

	backupRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "backhaul_backup_run_duration_seconds",
		Help:    "Wall-clock duration of backup runs",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	artifactsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backhaul_artifacts_retrieved_total",
		Help: "Artifacts transferred to local storage",
	})

	activeTimers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "backhaul_active_schedule_timers",
		Help: "Currently armed schedule timers",
	})
)

func ObserveBackupRun(status string, d time.Duration) {
	backupRunsTotal.WithLabelValues(status).Inc()
	backupRunDuration.Observe(d.Seconds())
}

func AddArtifacts(n int) {
	artifactsTotal.Add(float64(n))
}

func SetActiveTimers(n int) {
	activeTimers.Set(float64(n))
}
