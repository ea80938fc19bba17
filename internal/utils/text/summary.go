package text

import (
	"regexp"
	"strings"
)

// summaryPrefix matches a leading "Summary:" label in any letter case plus
// the whitespace after it.
var summaryPrefix = regexp.MustCompile(`(?i)^summary:\s*`)

// CleanSummary strips a leading case-insensitive "Summary:" label and trims
// surrounding whitespace. Text without the label is only trimmed.
func CleanSummary(raw string) string {
	return strings.TrimSpace(summaryPrefix.ReplaceAllString(raw, ""))
}
