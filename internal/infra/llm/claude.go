package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"text-summarizer/internal/utils/text"
)

// Claude implements Provider using Anthropic's Messages API.
type Claude struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
}

// NewClaude creates a Claude provider. SDK retries are disabled: a failed call
// fails the helper run.
func NewClaude(cfg Config) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Claude{
		client:  anthropic.NewClient(opts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Name returns the provider name.
func (c *Claude) Name() string {
	return ProviderClaude
}

// Complete sends p and joins the text blocks of the reply.
func (c *Claude) Complete(ctx context.Context, p Prompt) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(p.MaxTokens),
		Temperature: anthropic.Float(float64(p.Temperature)),
		System:      []anthropic.TextBlockParam{{Text: p.System}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(p.User)),
		},
	})
	duration := time.Since(start)
	if err != nil {
		return "", fmt.Errorf("claude api error: %w", err)
	}

	var b strings.Builder
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	summary := strings.TrimSpace(b.String())
	if summary == "" {
		return "", fmt.Errorf("claude: %w", ErrEmptyResponse)
	}

	slog.DebugContext(ctx, "completion received",
		slog.String("provider", ProviderClaude),
		slog.String("model", c.model),
		slog.Int("summary_length", text.CountRunes(summary)),
		slog.Duration("duration", duration))
	return summary, nil
}
