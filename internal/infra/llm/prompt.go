// Package llm turns article text into a summary through a hosted language model.
//
// It is used by the summarizer helper binary, not by the HTTP server: the server
// only ever talks to the helper through a process boundary. Prompt construction
// is shared by every provider; providers differ only in transport.
package llm

import (
	"text-summarizer/internal/domain/entity"
)

// SystemPrompt frames every summarization request.
const SystemPrompt = "You are a helpful assistant that creates clear, accurate summaries. " +
	"Focus on the most important information and maintain the requested format."

// Temperature is the sampling temperature used for every request.
const Temperature = 0.5

// Prompt is a provider-neutral summarization request.
type Prompt struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

var instructions = map[entity.SummaryType]map[entity.SummaryLength]string{
	entity.SummaryTypeBullet: {
		entity.SummaryLengthShort:  "Create 3-4 key bullet points from the following article:\n\n",
		entity.SummaryLengthMedium: "Create 5-7 comprehensive bullet points from the following article:\n\n",
		entity.SummaryLengthLong:   "Create 8-10 detailed bullet points from the following article:\n\n",
	},
	entity.SummaryTypeParagraph: {
		entity.SummaryLengthShort:  "Write a concise 2-3 sentence summary of the following article:\n\n",
		entity.SummaryLengthMedium: "Write a comprehensive paragraph summary of the following article:\n\n",
		entity.SummaryLengthLong:   "Write a detailed 2-3 paragraph summary of the following article:\n\n",
	},
}

var maxTokens = map[entity.SummaryLength]int{
	entity.SummaryLengthShort:  150,
	entity.SummaryLengthMedium: 300,
	entity.SummaryLengthLong:   500,
}

// BuildPrompt builds the prompt for text using raw type and length hints.
// Hints are normalized with entity.ParseSummaryType and entity.ParseSummaryLength.
func BuildPrompt(text, summaryType, length string) Prompt {
	st := entity.ParseSummaryType(summaryType)
	sl := entity.ParseSummaryLength(length)

	return Prompt{
		System:      SystemPrompt,
		User:        instructions[st][sl] + text + "\n\nSummary:",
		MaxTokens:   maxTokens[sl],
		Temperature: Temperature,
	}
}
