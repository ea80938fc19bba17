// Package metrics provides the Prometheus metrics of the summarization pipeline.
//
// The metrics cover every stage of a request:
//   - outcome counters per terminal state (success, configuration error, ...)
//   - helper process duration and in-flight count
//   - staged artifacts currently on disk and cleanup failures
//   - input size and truncated output
//
// All metrics are registered with the Prometheus default registry and exposed
// via the /metrics endpoint. Use cases depend on the Recorder interface so tests
// can substitute NoopRecorder or their own fake.
//
// Example usage:
//
//	import "text-summarizer/internal/observability/metrics"
//
//	rec := metrics.NewPrometheusRecorder()
//	rec.RecordOutcome(metrics.OutcomeSuccess)
package metrics
