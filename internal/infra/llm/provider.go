package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	envconfig "text-summarizer/pkg/config"
)

// Provider names accepted in SUMMARIZER_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderNoop   = "noop"
)

var (
	// ErrUnknownProvider indicates an unsupported SUMMARIZER_PROVIDER value.
	ErrUnknownProvider = errors.New("unknown summarizer provider")

	// ErrMissingAPIKey indicates that the selected provider has no credential.
	ErrMissingAPIKey = errors.New("api key not configured")

	// ErrEmptyResponse indicates that the model returned no usable text.
	ErrEmptyResponse = errors.New("model returned empty response")
)

// Provider completes a summarization prompt.
type Provider interface {
	Complete(ctx context.Context, p Prompt) (string, error)
	Name() string
}

// Config selects and configures a Provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// defaults per provider
var providerDefaults = map[string]struct {
	keyEnv string
	model  string
}{
	ProviderGemini: {keyEnv: "GEMINI_API_KEY", model: "gemini-2.0-flash"},
	ProviderOpenAI: {keyEnv: "OPENAI_API_KEY", model: "gpt-3.5-turbo"},
	ProviderClaude: {keyEnv: "ANTHROPIC_API_KEY", model: "claude-3-5-haiku-latest"},
	ProviderNoop:   {},
}

// LoadConfig reads the provider configuration from the environment.
//
// Environment variables:
//   - SUMMARIZER_PROVIDER: gemini (default), openai, claude or noop
//   - SUMMARIZER_MODEL: model override
//   - SUMMARIZER_BASE_URL: endpoint override
//   - SUMMARIZER_LLM_TIMEOUT: per-call timeout (default 60s)
//   - GEMINI_API_KEY / OPENAI_API_KEY / ANTHROPIC_API_KEY: credential of the selected provider
func LoadConfig() (Config, error) {
	name := strings.ToLower(envconfig.GetEnvString("SUMMARIZER_PROVIDER", ProviderGemini))
	defaults, ok := providerDefaults[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}

	cfg := Config{
		Provider: name,
		Model:    envconfig.GetEnvString("SUMMARIZER_MODEL", defaults.model),
		BaseURL:  os.Getenv("SUMMARIZER_BASE_URL"),
		Timeout:  envconfig.GetEnvDuration("SUMMARIZER_LLM_TIMEOUT", 60*time.Second),
	}
	if defaults.keyEnv != "" {
		cfg.APIKey = os.Getenv(defaults.keyEnv)
		if cfg.APIKey == "" {
			return Config{}, fmt.Errorf("%w: set %s", ErrMissingAPIKey, defaults.keyEnv)
		}
	}
	return cfg, nil
}

// New returns the Provider selected by cfg.
func New(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case ProviderGemini:
		return NewGemini(cfg), nil
	case ProviderOpenAI:
		return NewOpenAI(cfg), nil
	case ProviderClaude:
		return NewClaude(cfg), nil
	case ProviderNoop:
		return NewNoop(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
