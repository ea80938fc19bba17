package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/semaphore"

	"text-summarizer/internal/domain/entity"
	"text-summarizer/internal/infra/process"
	"text-summarizer/internal/infra/staging"
	"text-summarizer/internal/observability/logging"
	"text-summarizer/internal/observability/metrics"
	"text-summarizer/internal/observability/tracing"
	"text-summarizer/internal/utils/text"
)

// Config configures the Invoker.
type Config struct {
	// APIKey is handed to the helper. Empty fails every request with ErrConfiguration.
	APIKey string

	// Runtime is the executable to spawn.
	Runtime string

	// Script, when set, is passed to Runtime before the artifact path.
	Script string

	// Timeout kills the helper after this long. Zero means no limit.
	Timeout time.Duration

	// MaxOutputBytes caps each captured stream.
	MaxOutputBytes int64

	// MaxConcurrency bounds simultaneous helper processes. Zero means unlimited.
	MaxConcurrency int

	// MaxQueueWait bounds the wait for a process slot when MaxConcurrency is set.
	// Zero means wait until the caller gives up.
	MaxQueueWait time.Duration
}

// Summarizer produces a summary for a validated request.
type Summarizer interface {
	Summarize(ctx context.Context, req entity.SummarizeRequest) (string, error)
}

// Invoker runs one helper process per request.
//
// Each call walks INIT → STAGED → RUNNING → SUCCEEDED|FAILED → CLEANED_UP.
// The staged artifact is removed exactly once on every path after staging,
// including panics.
type Invoker struct {
	cfg     Config
	stager  *staging.Stager
	runner  process.Runner
	metrics metrics.Recorder
	slots   *semaphore.Weighted

	mu       sync.Mutex
	inflight int
	idle     chan struct{} // closed while inflight == 0
}

var _ Summarizer = (*Invoker)(nil)

// NewInvoker creates an Invoker. A nil recorder disables metrics.
func NewInvoker(cfg Config, stager *staging.Stager, runner process.Runner, rec metrics.Recorder) *Invoker {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	inv := &Invoker{
		cfg:     cfg,
		stager:  stager,
		runner:  runner,
		metrics: rec,
		idle:    make(chan struct{}),
	}
	close(inv.idle)
	if cfg.MaxConcurrency > 0 {
		inv.slots = semaphore.NewWeighted(int64(cfg.MaxConcurrency))
	}
	return inv
}

// Summarize stages req.Text, runs the helper on it and returns the cleaned stdout.
//
// Errors wrap ErrConfiguration, ErrStaging, ErrSpawn or ErrProcessFailure.
// Anything else is unexpected. Cancelling ctx stops a request still waiting
// for a process slot, but never a helper that is already running.
func (inv *Invoker) Summarize(ctx context.Context, req entity.SummarizeRequest) (summary string, err error) {
	inv.begin()
	defer inv.end()

	ctx, span := tracing.StartSpan(ctx, "summarize.invoke",
		attribute.String("summary.type", string(req.SummaryType)),
		attribute.String("summary.length", string(req.Length)),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			inv.metrics.RecordOutcome(metrics.OutcomeInternalError)
			panic(r)
		}
		tracing.RecordError(span, err)
		inv.metrics.RecordOutcome(outcomeLabel(err))
	}()

	if inv.cfg.APIKey == "" {
		return "", ErrConfiguration
	}

	if inv.slots != nil {
		if err := inv.acquireSlot(ctx); err != nil {
			return "", err
		}
		defer inv.slots.Release(1)
	}

	logger := logging.FromContext(ctx)
	inv.metrics.RecordInputSize(len(req.Text))

	artifact, err := inv.stage(ctx, req.Text)
	if err != nil {
		return "", err
	}
	defer inv.cleanup(ctx, artifact)

	outcome, err := inv.run(ctx, artifact.Path(), req)
	if err != nil {
		return "", err
	}

	if len(outcome.Stderr) > 0 {
		level := slog.LevelDebug
		if !outcome.Succeeded() {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "helper stderr",
			slog.Int("exit_status", outcome.ExitStatus),
			slog.String("stderr", text.Redact(string(outcome.Stderr))),
		)
	}

	if !outcome.Succeeded() {
		return "", fmt.Errorf("%w: exit status %d", ErrProcessFailure, outcome.ExitStatus)
	}

	summary = text.CleanSummary(string(outcome.Stdout))
	logger.Info("summary generated",
		slog.Int("input_runes", text.CountRunes(req.Text)),
		slog.Int("summary_runes", text.CountRunes(summary)),
		slog.Duration("duration", outcome.Duration),
	)
	return summary, nil
}

// Wait blocks until no Summarize call is in flight or ctx is done.
// Call it after the HTTP server has stopped accepting requests so every staged
// artifact is removed before the process exits.
func (inv *Invoker) Wait(ctx context.Context) error {
	inv.mu.Lock()
	idle := inv.idle
	inv.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (inv *Invoker) begin() {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if inv.inflight == 0 {
		inv.idle = make(chan struct{})
	}
	inv.inflight++
}

func (inv *Invoker) end() {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.inflight--
	if inv.inflight == 0 {
		close(inv.idle)
	}
}

// acquireSlot waits for a process slot. Running out of MaxQueueWait is a spawn
// failure; the caller giving up is returned as is.
func (inv *Invoker) acquireSlot(ctx context.Context) error {
	waitCtx := ctx
	if inv.cfg.MaxQueueWait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, inv.cfg.MaxQueueWait)
		defer cancel()
	}

	if err := inv.slots.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() == nil {
			return fmt.Errorf("%w: no process slot within %v", ErrSpawn, inv.cfg.MaxQueueWait)
		}
		return fmt.Errorf("wait for process slot: %w", err)
	}
	return nil
}

func (inv *Invoker) stage(ctx context.Context, input string) (*staging.Artifact, error) {
	_, span := tracing.StartSpan(ctx, "summarize.stage")
	defer span.End()

	artifact, err := inv.stager.Stage(input)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("%w: %w", ErrStaging, err)
	}
	inv.metrics.ArtifactStaged()
	return artifact, nil
}

func (inv *Invoker) run(ctx context.Context, artifactPath string, req entity.SummarizeRequest) (*process.Outcome, error) {
	// A client disconnect must not kill a helper that is already running.
	runCtx := context.WithoutCancel(ctx)
	if inv.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, inv.cfg.Timeout)
		defer cancel()
	}

	runCtx, span := tracing.StartSpan(runCtx, "summarize.run",
		attribute.String("process.runtime", inv.cfg.Runtime),
	)
	defer span.End()

	start := time.Now()
	inv.metrics.ProcessStarted()
	outcome, err := inv.runner.Run(runCtx, inv.command(artifactPath, req))
	if err != nil {
		inv.metrics.ProcessFinished(time.Since(start))
		tracing.RecordError(span, err)
		if errors.Is(err, process.ErrStart) {
			return nil, fmt.Errorf("%w: %w", ErrSpawn, err)
		}
		return nil, fmt.Errorf("run helper: %w", err)
	}
	inv.metrics.ProcessFinished(outcome.Duration)

	span.SetAttributes(attribute.Int("process.exit_status", outcome.ExitStatus))
	if outcome.Truncated {
		inv.metrics.RecordOutputTruncated()
		logging.FromContext(ctx).Warn("helper output truncated",
			slog.Int64("max_output_bytes", inv.cfg.MaxOutputBytes))
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && !outcome.Succeeded() {
		logging.FromContext(ctx).Error("helper timed out",
			slog.Duration("timeout", inv.cfg.Timeout))
	}
	return outcome, nil
}

func (inv *Invoker) command(artifactPath string, req entity.SummarizeRequest) process.Command {
	args := []string{artifactPath}
	if inv.cfg.Script != "" {
		args = []string{inv.cfg.Script, artifactPath}
	}
	return process.Command{
		Path: inv.cfg.Runtime,
		Args: args,
		Env: []string{
			entity.EnvCredential + "=" + inv.cfg.APIKey,
			entity.EnvSummaryType + "=" + string(req.SummaryType),
			entity.EnvSummaryLength + "=" + string(req.Length),
		},
		MaxOutputBytes: inv.cfg.MaxOutputBytes,
	}
}

func (inv *Invoker) cleanup(ctx context.Context, artifact *staging.Artifact) {
	_, span := tracing.StartSpan(ctx, "summarize.cleanup")
	defer span.End()

	if err := artifact.Remove(); err != nil {
		tracing.RecordError(span, err)
		inv.metrics.RecordCleanupFailure()
		logging.FromContext(ctx).Error("failed to remove staged input",
			slog.String("path", artifact.Path()),
			slog.Any("error", err))
		return
	}
	inv.metrics.ArtifactRemoved()
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrConfiguration):
		return metrics.OutcomeConfigurationError
	case errors.Is(err, ErrStaging):
		return metrics.OutcomeStagingError
	case errors.Is(err, ErrSpawn):
		return metrics.OutcomeSpawnError
	case errors.Is(err, ErrProcessFailure):
		return metrics.OutcomeProcessFailure
	default:
		return metrics.OutcomeInternalError
	}
}
