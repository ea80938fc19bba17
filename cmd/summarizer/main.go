// Package main provides the summarizer helper spawned by the API server.
//
// Usage:
//
//	summarizer <file>   summarize the file; hints from SUMMARY_TYPE and SUMMARY_LENGTH
//	summarizer [-]      read {"text","summaryType","length"} JSON from stdin
//
// File mode prints "Summary:\n<text>" to stdout. JSON mode prints
// {"summary": "..."}. Any failure goes to stderr with exit status 1.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"text-summarizer/internal/domain/entity"
	"text-summarizer/internal/infra/llm"
	"text-summarizer/internal/observability/logging"
	"text-summarizer/internal/utils/text"
)

const (
	exitOK      = 0
	exitFailure = 1
)

// jsonInput is the stdin payload in JSON mode.
type jsonInput struct {
	Text        string `json:"text"`
	SummaryType string `json:"summaryType"`
	Length      string `json:"length"`
}

type providerFactory func() (llm.Provider, error)

func main() {
	// stdout carries the summary; logs go to stderr with the diagnostics.
	logger := logging.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, newProvider)
	stop()
	os.Exit(code)
}

func newProvider() (llm.Provider, error) {
	cfg, err := llm.LoadConfig()
	if err != nil {
		return nil, err
	}
	return llm.New(cfg)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, factory providerFactory) int {
	if len(args) > 1 {
		fmt.Fprintln(stderr, "Usage: summarizer [<file> | -]")
		return exitFailure
	}
	if len(args) == 0 || args[0] == "-" {
		return runJSON(ctx, stdin, stdout, stderr, factory)
	}
	return runFile(ctx, args[0], stdout, stderr, factory)
}

func runFile(ctx context.Context, path string, stdout, stderr io.Writer, factory providerFactory) int {
	// #nosec G304 -- path is the artifact staged by the server
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(stderr, "Error: File %s not found\n", path)
		} else {
			fmt.Fprintf(stderr, "Error: Failed to read %s\n", path)
			slog.ErrorContext(ctx, "failed to read input file", slog.Any("error", err))
		}
		return exitFailure
	}

	summary, err := summarize(ctx, factory, string(data),
		os.Getenv(entity.EnvSummaryType), os.Getenv(entity.EnvSummaryLength))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", errorMessage(err))
		return exitFailure
	}

	fmt.Fprintf(stdout, "Summary:\n%s\n", summary)
	return exitOK
}

func runJSON(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, factory providerFactory) int {
	var in jsonInput
	if err := json.NewDecoder(stdin).Decode(&in); err != nil {
		writeJSONError(stderr, "Invalid JSON input")
		return exitFailure
	}

	summary, err := summarize(ctx, factory, in.Text, in.SummaryType, in.Length)
	if err != nil {
		writeJSONError(stderr, errorMessage(err))
		return exitFailure
	}

	if err := json.NewEncoder(stdout).Encode(map[string]string{"summary": summary}); err != nil {
		slog.ErrorContext(ctx, "failed to write summary", slog.Any("error", err))
		return exitFailure
	}
	return exitOK
}

var (
	errNoText     = errors.New("no text provided")
	errProvider   = errors.New("provider not configured")
	errGeneration = errors.New("failed to generate summary")
)

func summarize(ctx context.Context, factory providerFactory, input, summaryType, length string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", errNoText
	}

	provider, err := factory()
	if err != nil {
		return "", fmt.Errorf("%w: %s", errProvider, text.Redact(err.Error()))
	}

	prompt := llm.BuildPrompt(input, summaryType, length)
	slog.DebugContext(ctx, "summarizing",
		slog.String("provider", provider.Name()),
		slog.Int("text_length", text.CountRunes(input)),
		slog.Int("max_tokens", prompt.MaxTokens))

	summary, err := provider.Complete(ctx, prompt)
	if err != nil {
		slog.ErrorContext(ctx, "summarization failed",
			slog.String("provider", provider.Name()),
			slog.String("error", text.Redact(err.Error())))
		return "", errGeneration
	}
	return summary, nil
}

// errorMessage renders err for stderr. Provider errors are already redacted.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, errNoText):
		return "No text provided"
	case errors.Is(err, errGeneration):
		return "Failed to generate summary"
	default:
		return err.Error()
	}
}

func writeJSONError(w io.Writer, msg string) {
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
