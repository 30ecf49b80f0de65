package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_evaluations_total",
			Help: "Total number of résumé evaluations by outcome",
		},
		[]string{"outcome"},
	)

	EvaluationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_evaluation_failures_total",
			Help: "Total number of failed evaluations by stage and error kind",
		},
		[]string{"stage", "kind"},
	)

	AugmentationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_augmentation_attempts_total",
			Help: "Total number of LLM augmentation attempts by result",
		},
		[]string{"provider", "result"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resume_evaluation_stage_duration_seconds",
			Help:    "Duration of each evaluation stage in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		},
		[]string{"stage"},
	)

	RoleCatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "resume_role_catalog_size",
			Help: "Number of role profiles in the active catalog",
		},
	)
)
