// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package with helper functions
// for the logging patterns used by the API server and the summarizer helper.
//
// Key features:
//   - JSON and text output formats (LOG_FORMAT)
//   - Configurable log levels (LOG_LEVEL)
//   - Request ID propagation
//   - Context-aware logging
//
// Example usage:
//
//	import "text-summarizer/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger(os.Stdout)
//	    logger.Info("server starting", slog.String("addr", ":8080"))
//	}
//
//	func handleRequest(ctx context.Context) {
//	    logger := logging.WithRequestID(ctx, slog.Default())
//	    logger.Info("processing request")
//	}
package logging
