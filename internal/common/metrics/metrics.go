// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	IntentClassifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_classifications_total",
			Help: "Intent records produced, by the strategy that produced them",
		},
		[]string{"strategy"},
	)

	IntentClassifierFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_classifier_fallbacks_total",
			Help: "Remote classification failures absorbed by the heuristic fallback",
		},
		[]string{"reason"},
	)

	IntentClassificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intent_classification_duration_seconds",
			Help:    "Latency of intent classification including fallback",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"strategy"},
	)

	ResearchPlans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_plans_total",
			Help: "Research plans created, by decision path",
		},
		[]string{"path"},
	)

	ResearchPlanTasks = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "research_plan_tasks",
			Help:    "Number of tasks per research plan",
			Buckets: prometheus.LinearBuckets(1, 1, 8),
		},
	)
)
