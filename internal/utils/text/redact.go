package text

import "regexp"

var (
	// Order matters: more specific patterns first.
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	openaiKeyPattern    = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)
	geminiKeyPattern    = regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`)

	// key=... query parameters and KEY=... env assignments echoed by helpers
	keyAssignmentPattern = regexp.MustCompile(`(?i)((?:api[_-]?key|key)=)[^\s&"']+`)
	bearerPattern        = regexp.MustCompile(`(?i)(bearer\s+)[a-z0-9._~+/=-]+`)
)

// Redact masks credentials in free-form text such as helper stderr.
func Redact(msg string) string {
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = geminiKeyPattern.ReplaceAllString(msg, "AIza****")
	msg = keyAssignmentPattern.ReplaceAllString(msg, "${1}****")
	msg = bearerPattern.ReplaceAllString(msg, "${1}****")
	return msg
}
