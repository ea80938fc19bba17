package respond

import (
	"text-summarizer/internal/utils/text"
)

// SanitizeError returns the error message with credentials masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return text.Redact(err.Error())
}
