package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssessmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardiorisk_assessments_total",
			Help: "Total number of completed risk assessments",
		},
		[]string{"source", "outcome"},
	)

	AssessmentErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardiorisk_assessment_errors_total",
			Help: "Total number of assessments that failed",
		},
		[]string{"stage"},
	)

	FieldRecoveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardiorisk_field_recoveries_total",
			Help: "Input fields replaced by a fallback or impute value",
		},
		[]string{"column", "reason"},
	)

	AssessmentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardiorisk_assessment_duration_seconds",
			Help:    "Duration of assessment processing in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"source"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardiorisk_prediction_cache_lookups_total",
			Help: "Prediction cache lookups by result",
		},
		[]string{"result"},
	)
)

// Outcome label for a high/low risk result.
func Outcome(high bool) string {
	if high {
		return "high"
	}
	return "low"
}
