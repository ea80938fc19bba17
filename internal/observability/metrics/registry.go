package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for SummarizeRequestsTotal.
const (
	OutcomeSuccess            = "success"
	OutcomeConfigurationError = "configuration_error"
	OutcomeStagingError       = "staging_error"
	OutcomeSpawnError         = "spawn_error"
	OutcomeProcessFailure     = "process_failure"
	OutcomeInternalError      = "internal_error"
)

// Pipeline metrics track the summarization pipeline end to end.
var (
	// SummarizeRequestsTotal counts summarization attempts by terminal outcome
	SummarizeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summarize_requests_total",
			Help: "Total number of summarization attempts by outcome",
		},
		[]string{"outcome"},
	)

	// SummarizeProcessDuration measures helper process wall time
	SummarizeProcessDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "summarize_process_duration_seconds",
			Help:    "Wall time of the summarization helper process",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// SummarizeProcessesInFlight tracks helper processes currently running
	SummarizeProcessesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "summarize_processes_in_flight",
			Help: "Number of summarization helper processes currently running",
		},
	)

	// SummarizeStagedArtifacts tracks input artifacts currently on disk
	SummarizeStagedArtifacts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "summarize_staged_artifacts",
			Help: "Number of staged input artifacts not yet removed",
		},
	)

	// SummarizeCleanupFailuresTotal counts artifacts that could not be removed
	SummarizeCleanupFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "summarize_cleanup_failures_total",
			Help: "Total number of staged artifacts whose removal failed",
		},
	)

	// SummarizeOutputTruncatedTotal counts processes whose output exceeded the capture limit
	SummarizeOutputTruncatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "summarize_output_truncated_total",
			Help: "Total number of helper runs whose output was truncated",
		},
	)

	// SummarizeInputBytes measures the size of submitted text
	SummarizeInputBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "summarize_input_bytes",
			Help:    "Size of submitted text in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 4, 8),
		},
	)
)
