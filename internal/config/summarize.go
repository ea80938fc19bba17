package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"text-summarizer/internal/domain/entity"
	envconfig "text-summarizer/pkg/config"
)

// CredentialEnv is the environment variable carrying the model-provider API key.
// The same name is used when the key is handed to the helper process.
const CredentialEnv = entity.EnvCredential

// Defaults applied before the optional YAML file and the environment.
const (
	DefaultHTTPAddr       = ":8080"
	DefaultRuntime        = "summarizer"
	DefaultTimeout        = 120 * time.Second
	DefaultMaxOutputBytes = 1 << 20
	DefaultMaxBodyBytes   = 1 << 20
	DefaultMaxQueueWait   = 30 * time.Second
)

// Config is the complete server configuration.
type Config struct {
	// HTTPAddr is the listen address. Env: HTTP_ADDR.
	HTTPAddr string

	// Version is reported by the health endpoint. Env: VERSION.
	Version string

	Summarize SummarizeConfig
}

// SummarizeConfig configures the summarization pipeline.
type SummarizeConfig struct {
	// APIKey is the model-provider credential. It is only ever read from the
	// environment and may be empty: a missing key is reported per request.
	APIKey string `yaml:"-"`

	// Runtime is the executable spawned for each request. Env: SUMMARIZER_RUNTIME.
	Runtime string `yaml:"runtime"`

	// Script is passed as the first argument when the runtime is an interpreter.
	// Empty means the runtime receives the artifact path only. Env: SUMMARIZER_SCRIPT.
	Script string `yaml:"script"`

	// TempDir is where input artifacts are staged. Env: SUMMARIZER_TEMP_DIR.
	TempDir string `yaml:"temp_dir"`

	// Timeout kills a helper process that runs longer. Env: SUMMARIZER_TIMEOUT.
	Timeout time.Duration `yaml:"timeout"`

	// MaxOutputBytes caps each captured stream. Env: SUMMARIZER_MAX_OUTPUT_BYTES.
	MaxOutputBytes int64 `yaml:"max_output_bytes"`

	// MaxBodyBytes caps the request body. Env: SUMMARIZER_MAX_BODY_BYTES.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// MaxConcurrency bounds simultaneous helper processes; 0 disables the bound.
	// Env: SUMMARIZER_MAX_CONCURRENCY.
	MaxConcurrency int `yaml:"max_concurrency"`

	// MaxQueueWait bounds the wait for a free slot when MaxConcurrency is set.
	// Env: SUMMARIZER_MAX_QUEUE_WAIT.
	MaxQueueWait time.Duration `yaml:"max_queue_wait"`
}

// RequestBudget is the longest a summarize request can spend in the pipeline:
// the slot wait (only when concurrency is bounded) plus the helper timeout.
func (s SummarizeConfig) RequestBudget() time.Duration {
	if s.MaxConcurrency > 0 {
		return s.MaxQueueWait + s.Timeout
	}
	return s.Timeout
}

// fileConfig mirrors the YAML layout:
//
//	server:
//	  addr: ":8080"
//	summarizer:
//	  runtime: python
//	  script: ./summarizer.py
//	  timeout: 90s
type fileConfig struct {
	Server struct {
		Addr    string `yaml:"addr"`
		Version string `yaml:"version"`
	} `yaml:"server"`
	Summarize SummarizeConfig `yaml:"summarizer"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		HTTPAddr: DefaultHTTPAddr,
		Version:  "dev",
		Summarize: SummarizeConfig{
			Runtime:        DefaultRuntime,
			TempDir:        os.TempDir(),
			Timeout:        DefaultTimeout,
			MaxOutputBytes: DefaultMaxOutputBytes,
			MaxBodyBytes:   DefaultMaxBodyBytes,
			MaxQueueWait:   DefaultMaxQueueWait,
		},
	}
}

// Load builds the configuration from defaults, the YAML file named by
// SUMMARIZER_CONFIG_FILE (if any) and finally the environment.
// It fails closed: an unreadable file or an invalid result is an error.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("SUMMARIZER_CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// mergeFile overlays non-zero values from a YAML file.
// The path comes from the operator's environment, not from request input.
func (c *Config) mergeFile(path string) error {
	// #nosec G304 -- path is operator-supplied configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.Server.Addr != "" {
		c.HTTPAddr = fc.Server.Addr
	}
	if fc.Server.Version != "" {
		c.Version = fc.Server.Version
	}

	s := fc.Summarize
	if s.Runtime != "" {
		c.Summarize.Runtime = s.Runtime
	}
	if s.Script != "" {
		c.Summarize.Script = s.Script
	}
	if s.TempDir != "" {
		c.Summarize.TempDir = s.TempDir
	}
	if s.Timeout != 0 {
		c.Summarize.Timeout = s.Timeout
	}
	if s.MaxOutputBytes != 0 {
		c.Summarize.MaxOutputBytes = s.MaxOutputBytes
	}
	if s.MaxBodyBytes != 0 {
		c.Summarize.MaxBodyBytes = s.MaxBodyBytes
	}
	if s.MaxConcurrency != 0 {
		c.Summarize.MaxConcurrency = s.MaxConcurrency
	}
	if s.MaxQueueWait != 0 {
		c.Summarize.MaxQueueWait = s.MaxQueueWait
	}
	return nil
}

func (c *Config) applyEnv() {
	c.HTTPAddr = envconfig.GetEnvString("HTTP_ADDR", c.HTTPAddr)
	c.Version = envconfig.GetEnvString("VERSION", c.Version)

	s := &c.Summarize
	s.APIKey = os.Getenv(CredentialEnv)
	s.Runtime = envconfig.GetEnvString("SUMMARIZER_RUNTIME", s.Runtime)
	s.Script = envconfig.GetEnvString("SUMMARIZER_SCRIPT", s.Script)
	s.TempDir = envconfig.GetEnvString("SUMMARIZER_TEMP_DIR", s.TempDir)
	s.Timeout = envconfig.GetEnvDuration("SUMMARIZER_TIMEOUT", s.Timeout)
	s.MaxOutputBytes = envconfig.GetEnvInt64("SUMMARIZER_MAX_OUTPUT_BYTES", s.MaxOutputBytes)
	s.MaxBodyBytes = envconfig.GetEnvInt64("SUMMARIZER_MAX_BODY_BYTES", s.MaxBodyBytes)
	s.MaxConcurrency = envconfig.GetEnvInt("SUMMARIZER_MAX_CONCURRENCY", s.MaxConcurrency)
	s.MaxQueueWait = envconfig.GetEnvDuration("SUMMARIZER_MAX_QUEUE_WAIT", s.MaxQueueWait)
}

// Validate checks configuration correctness. The API key is deliberately not
// checked here: its absence must surface as a per-request configuration error.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("HTTP_ADDR cannot be empty"))
	}
	if c.Summarize.Runtime == "" {
		errs = append(errs, errors.New("SUMMARIZER_RUNTIME cannot be empty"))
	}
	if c.Summarize.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("SUMMARIZER_TIMEOUT must be positive, got %v", c.Summarize.Timeout))
	}
	if c.Summarize.MaxOutputBytes <= 0 {
		errs = append(errs, fmt.Errorf("SUMMARIZER_MAX_OUTPUT_BYTES must be positive, got %d", c.Summarize.MaxOutputBytes))
	}
	if c.Summarize.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("SUMMARIZER_MAX_BODY_BYTES must be positive, got %d", c.Summarize.MaxBodyBytes))
	}
	if c.Summarize.MaxConcurrency < 0 {
		errs = append(errs, fmt.Errorf("SUMMARIZER_MAX_CONCURRENCY cannot be negative, got %d", c.Summarize.MaxConcurrency))
	}
	if c.Summarize.MaxQueueWait < 0 {
		errs = append(errs, fmt.Errorf("SUMMARIZER_MAX_QUEUE_WAIT cannot be negative, got %v", c.Summarize.MaxQueueWait))
	}

	return errors.Join(errs...)
}
