// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EvaluationsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluations_completed_total",
			Help: "Total number of evaluations completed, by category",
		},
		[]string{"category"},
	)

	EvaluationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluations_failed_total",
			Help: "Total number of failed evaluation submissions",
		},
		[]string{"error_code"},
	)

	EvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "evaluation_duration_seconds",
			Help: "Duration of a full evaluation pipeline run in seconds",
		},
	)

	OracleFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oracle_fallbacks_total",
			Help: "Number of runs downgraded to the deterministic assessor",
		},
	)

	DocumentParseFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_parse_failures_total",
			Help: "Per-document extraction failures, by declared kind",
		},
		[]string{"kind"},
	)
)
