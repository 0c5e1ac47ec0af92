// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analysis_completed_total",
			Help: "Total number of content analyses that produced a stored session",
		},
	)

	AnalysesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_failed_total",
			Help: "Total number of content analyses that terminated with a failure",
		},
		[]string{"error_code"},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_duration_seconds",
			Help:    "Duration of the full analysis pipeline in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Total number of HTTP attempts against the AI service",
		},
		[]string{"status"},
	)

	LLMRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "llm_retries_total",
			Help: "Total number of retried AI service attempts",
		},
	)

	SessionsStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessions_stored_total",
			Help: "Total number of sessions written to the session store",
		},
		[]string{"backend"},
	)

	SessionsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_evicted_total",
			Help: "Total number of sessions evicted under the capacity bound",
		},
	)
)
