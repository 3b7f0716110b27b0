// Package metrics instruments the resolution pipeline for build servers
// that embed lockstep as a long-running component.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	resolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lockstep_resolutions_total",
			Help: "Number of resolution pipeline runs by outcome.",
		},
		[]string{"outcome"},
	)

	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lockstep_stage_duration_seconds",
			Help:    "Duration of pipeline stages.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	artifactErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lockstep_artifact_errors_total",
			Help: "Total number of per-artifact fetch errors embedded in reports.",
		},
	)

	configSetsResolvedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lockstep_config_sets_resolved_total",
			Help: "Total number of configuration sets resolved.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		resolutionsTotal,
		stageDuration,
		artifactErrorsTotal,
		configSetsResolvedTotal,
	)
}

// Outcome labels for RecordOutcome.
const (
	OutcomeSuccess = "success"
	OutcomeWarning = "warning"
	OutcomeFailure = "failure"
)

func RecordOutcome(outcome string) {
	resolutionsTotal.WithLabelValues(outcome).Inc()
}

func ObserveStage(stage string, d time.Duration) {
	stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func AddArtifactErrors(n int) {
	artifactErrorsTotal.Add(float64(n))
}

func AddConfigSetsResolved(n int) {
	configSetsResolvedTotal.Add(float64(n))
}
