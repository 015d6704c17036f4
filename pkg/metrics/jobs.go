package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JobMetrics records runs of the background maintenance jobs.
type JobMetrics struct {
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
	affected *prometheus.CounterVec
}

// NewJobMetrics registers the job metrics on the provided registerer.
func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "job_duration_seconds",
		Help:    "Duration of background job runs.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_runs_total",
		Help: "Background job runs by result.",
	}, []string{"job", "result"})
	affected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_affected_total",
		Help: "Records removed by background jobs.",
	}, []string{"job"})
	reg.MustRegister(duration, runs, affected)
	return &JobMetrics{
		duration: duration,
		runs:     runs,
		affected: affected,
	}
}

func (j *JobMetrics) ObserveDuration(job string, duration time.Duration) {
	if j == nil || j.duration == nil {
		return
	}
	j.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

func (j *JobMetrics) IncSuccess(job string) {
	if j == nil || j.runs == nil {
		return
	}
	j.runs.WithLabelValues(normalizeLabel(job), "success").Inc()
}

func (j *JobMetrics) IncFailure(job string) {
	if j == nil || j.runs == nil {
		return
	}
	j.runs.WithLabelValues(normalizeLabel(job), "failure").Inc()
}

// AddAffected counts records a job removed.
func (j *JobMetrics) AddAffected(job string, n int64) {
	if j == nil || j.affected == nil || n <= 0 {
		return
	}
	j.affected.WithLabelValues(normalizeLabel(job)).Add(float64(n))
}
