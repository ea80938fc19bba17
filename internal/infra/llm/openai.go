package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"text-summarizer/internal/utils/text"
)

// GeminiBaseURL is Gemini's OpenAI-compatible endpoint.
const GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// ChatCompletion implements Provider against any OpenAI-compatible chat
// completions API. It backs both the gemini and openai providers.
type ChatCompletion struct {
	name    string
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewGemini creates a Provider for Gemini through its OpenAI-compatible API.
func NewGemini(cfg Config) *ChatCompletion {
	if cfg.BaseURL == "" {
		cfg.BaseURL = GeminiBaseURL
	}
	return newChatCompletion(ProviderGemini, cfg)
}

// NewOpenAI creates a Provider for the OpenAI API.
func NewOpenAI(cfg Config) *ChatCompletion {
	return newChatCompletion(ProviderOpenAI, cfg)
}

func newChatCompletion(name string, cfg Config) *ChatCompletion {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &ChatCompletion{
		name:    name,
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Name returns the provider name.
func (c *ChatCompletion) Name() string {
	return c.name
}

// Complete sends p as a system + user message pair and returns the trimmed reply.
func (c *ChatCompletion) Complete(ctx context.Context, p Prompt) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
	})
	duration := time.Since(start)
	if err != nil {
		return "", fmt.Errorf("%s api error: %w", c.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: %w", c.name, ErrEmptyResponse)
	}
	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf("%s: %w", c.name, ErrEmptyResponse)
	}

	slog.DebugContext(ctx, "completion received",
		slog.String("provider", c.name),
		slog.String("model", c.model),
		slog.Int("summary_length", text.CountRunes(summary)),
		slog.Duration("duration", duration))
	return summary, nil
}
