// Package summarize provides the summarization use case: it stages request text
// into a transient file, runs the helper process against it with the model
// credential, and maps the process outcome to a summary or a classified error.
package summarize

import "errors"

// Sentinel errors for summarization. Callers classify them with errors.Is.
var (
	// ErrConfiguration indicates that the model credential is not configured.
	// No file is staged and no process is started.
	ErrConfiguration = errors.New("model credential not configured")

	// ErrStaging indicates that the input could not be written to a transient file.
	ErrStaging = errors.New("failed to stage input")

	// ErrSpawn indicates that the helper process could not be started.
	ErrSpawn = errors.New("failed to start helper process")

	// ErrProcessFailure indicates that the helper exited with a non-zero status
	// or was killed after exceeding its timeout.
	ErrProcessFailure = errors.New("helper process failed")
)
