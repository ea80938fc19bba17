package metrics

import "time"

// Recorder records summarization pipeline metrics.
// It abstracts Prometheus so use-case tests can inject a fake.
type Recorder interface {
	// RecordOutcome increments the counter for one terminal outcome.
	RecordOutcome(outcome string)

	// RecordInputSize observes the size of the submitted text.
	RecordInputSize(bytes int)

	// ArtifactStaged and ArtifactRemoved move the staged-artifact gauge.
	ArtifactStaged()
	ArtifactRemoved()

	// RecordCleanupFailure counts an artifact that could not be removed.
	RecordCleanupFailure()

	// ProcessStarted and ProcessFinished move the in-flight gauge;
	// ProcessFinished also observes the process duration.
	ProcessStarted()
	ProcessFinished(duration time.Duration)

	// RecordOutputTruncated counts a run whose output exceeded the capture limit.
	RecordOutputTruncated()
}

// PrometheusRecorder implements Recorder with the package-level Prometheus metrics.
type PrometheusRecorder struct{}

// NewPrometheusRecorder returns the production Recorder.
func NewPrometheusRecorder() *PrometheusRecorder {
	return &PrometheusRecorder{}
}

func (PrometheusRecorder) RecordOutcome(outcome string) {
	SummarizeRequestsTotal.WithLabelValues(outcome).Inc()
}

func (PrometheusRecorder) RecordInputSize(bytes int) {
	SummarizeInputBytes.Observe(float64(bytes))
}

func (PrometheusRecorder) ArtifactStaged() {
	SummarizeStagedArtifacts.Inc()
}

func (PrometheusRecorder) ArtifactRemoved() {
	SummarizeStagedArtifacts.Dec()
}

func (PrometheusRecorder) RecordCleanupFailure() {
	SummarizeCleanupFailuresTotal.Inc()
}

func (PrometheusRecorder) ProcessStarted() {
	SummarizeProcessesInFlight.Inc()
}

func (PrometheusRecorder) ProcessFinished(duration time.Duration) {
	SummarizeProcessesInFlight.Dec()
	SummarizeProcessDuration.Observe(duration.Seconds())
}

func (PrometheusRecorder) RecordOutputTruncated() {
	SummarizeOutputTruncatedTotal.Inc()
}

// NoopRecorder discards all metrics.
type NoopRecorder struct{}

func (NoopRecorder) RecordOutcome(string)          {}
func (NoopRecorder) RecordInputSize(int)           {}
func (NoopRecorder) ArtifactStaged()               {}
func (NoopRecorder) ArtifactRemoved()              {}
func (NoopRecorder) RecordCleanupFailure()         {}
func (NoopRecorder) ProcessStarted()               {}
func (NoopRecorder) ProcessFinished(time.Duration) {}
func (NoopRecorder) RecordOutputTruncated()        {}
