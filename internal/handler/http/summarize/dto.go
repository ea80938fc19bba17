// Package summarize provides the HTTP handler for POST /api/summarize.
// It validates the payload before any resource is allocated and maps
// summarization failures onto fixed, non-revealing error messages.
package summarize

// Request is the JSON payload of POST /api/summarize.
type Request struct {
	Text        string `json:"text"`
	SummaryType string `json:"summaryType"`
	Length      string `json:"length"`
}

// Response is the JSON body of a successful summarization.
type Response struct {
	Summary string `json:"summary"`
}

// User-facing error messages.
const (
	MsgNoBody           = "No request body provided"
	MsgBodyTooLarge     = "Request body too large"
	MsgInvalidBody      = "Invalid request body"
	MsgTextRequired     = "Text is required"
	MsgMissingAPIKey    = "Gemini API key not configured. Please set GEMINI_API_KEY environment variable."
	MsgStartFailed      = "Failed to start summarization process"
	MsgGenerationFailed = "Failed to generate summary"
)
