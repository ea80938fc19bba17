package llm

import (
	"context"
	"strings"
)

// noopMaxRunes bounds the noop provider's output.
const noopMaxRunes = 500

// Noop is a Provider that echoes the start of the article without calling a model.
// It is useful for local development and end-to-end tests.
type Noop struct{}

// NewNoop creates a Noop provider.
func NewNoop() *Noop {
	return &Noop{}
}

// Name returns the provider name.
func (n *Noop) Name() string {
	return ProviderNoop
}

// Complete returns the article embedded in the user prompt, truncated to 500 runes.
func (n *Noop) Complete(_ context.Context, p Prompt) (string, error) {
	article := p.User
	if i := strings.Index(article, "\n\n"); i >= 0 {
		article = article[i+2:]
	}
	article = strings.TrimSpace(strings.TrimSuffix(article, "\n\nSummary:"))

	runes := []rune(article)
	if len(runes) <= noopMaxRunes {
		return article, nil
	}
	return string(runes[:noopMaxRunes]) + "...", nil
}
