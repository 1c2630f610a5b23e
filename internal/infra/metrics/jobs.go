package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(jobsSubmittedTotal, jobsProcessedTotal, segmentsTotal, jobDurationSeconds)
}

var jobsSubmittedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "translation_jobs_submitted_total",
		Help: "Total number of translation jobs submitted.",
	},
)

var jobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "translation_jobs_processed_total",
		Help: "Total number of translation jobs processed, labeled by terminal status.",
	},
	[]string{"status"}, // 'completed', 'failed'
)

var segmentsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "translation_segments_total",
		Help: "Segments handled by workers, labeled by outcome.",
	},
	[]string{"outcome"}, // 'translated', 'skipped'
)

var jobDurationSeconds = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "translation_job_duration_seconds",
		Help:    "Wall-clock duration of job processing.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
	},
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncJobSubmitted() { jobsSubmittedTotal.Inc() }

func IncJobProcessed(status string) {
	jobsProcessedTotal.WithLabelValues(norm(status)).Inc()
}

func IncSegment(outcome string) {
	segmentsTotal.WithLabelValues(norm(outcome)).Inc()
}

func ObserveJobDuration(seconds float64) {
	jobDurationSeconds.Observe(seconds)
}
