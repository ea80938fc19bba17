// Package tracing provides OpenTelemetry tracing for the summarizer service.
//
// InitProvider installs a global SDK tracer provider tagged with the service
// name and version. Middleware opens a server span per HTTP request and use
// cases open child spans for staging and helper process execution.
//
// Example usage:
//
//	import "text-summarizer/internal/observability/tracing"
//
//	func main() {
//	    shutdown := tracing.InitProvider("text-summarizer", "1.0.0")
//	    defer shutdown(context.Background())
//	}
//
//	func stage(ctx context.Context) {
//	    ctx, span := tracing.StartSpan(ctx, "summarize.stage")
//	    defer span.End()
//	}
package tracing
