// Package entity defines the domain types exchanged between the HTTP layer,
// the summarization use case and the helper process.
package entity

import "strings"

// SummaryType is the requested layout of a summary.
type SummaryType string

// SummaryLength is the requested size of a summary.
type SummaryLength string

const (
	SummaryTypeBullet    SummaryType = "bullet"
	SummaryTypeParagraph SummaryType = "paragraph"

	SummaryLengthShort  SummaryLength = "short"
	SummaryLengthMedium SummaryLength = "medium"
	SummaryLengthLong   SummaryLength = "long"
)

// Environment variables forming the contract between the server and the
// helper process it spawns.
const (
	// EnvCredential carries the model-provider API key.
	EnvCredential = "GEMINI_API_KEY"
	// EnvSummaryType carries the raw summaryType hint.
	EnvSummaryType = "SUMMARY_TYPE"
	// EnvSummaryLength carries the raw length hint.
	EnvSummaryLength = "SUMMARY_LENGTH"
)

// SummarizeRequest is a validated request to summarize free-form text.
//
// SummaryType and Length are hints for the helper's prompt construction.
// They are carried as received and never validated against their enums here.
type SummarizeRequest struct {
	Text        string
	SummaryType SummaryType
	Length      SummaryLength
}

// Validate checks that the request carries at least one non-whitespace character of text.
func (r SummarizeRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return &ValidationError{Field: "text", Message: "Text is required", Err: ErrTextRequired}
	}
	return nil
}

// ParseSummaryType maps a raw hint onto a known SummaryType.
// Anything other than "paragraph" resolves to bullet points.
func ParseSummaryType(raw string) SummaryType {
	if SummaryType(strings.ToLower(strings.TrimSpace(raw))) == SummaryTypeParagraph {
		return SummaryTypeParagraph
	}
	return SummaryTypeBullet
}

// ParseSummaryLength maps a raw hint onto a known SummaryLength.
// Empty input resolves to medium; unknown values resolve to long.
func ParseSummaryLength(raw string) SummaryLength {
	switch SummaryLength(strings.ToLower(strings.TrimSpace(raw))) {
	case SummaryLengthShort:
		return SummaryLengthShort
	case SummaryLengthMedium, "":
		return SummaryLengthMedium
	default:
		return SummaryLengthLong
	}
}
