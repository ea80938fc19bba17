package summarize_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"text-summarizer/internal/domain/entity"
	"text-summarizer/internal/infra/process"
	"text-summarizer/internal/infra/staging"
	"text-summarizer/internal/observability/metrics"
	summarizeUC "text-summarizer/internal/usecase/summarize"
)

/* ───────── test doubles ───────── */

// stubRunner records each command and the artifact contents seen while running.
type stubRunner struct {
	mu       sync.Mutex
	calls    []process.Command
	inputs   []string
	contexts []context.Context

	outcome *process.Outcome
	err     error
	hook    func(ctx context.Context, cmd process.Command)
}

func (s *stubRunner) Run(ctx context.Context, cmd process.Command) (*process.Outcome, error) {
	artifact := cmd.Args[len(cmd.Args)-1]
	data, _ := os.ReadFile(artifact)

	s.mu.Lock()
	s.calls = append(s.calls, cmd)
	s.inputs = append(s.inputs, string(data))
	s.contexts = append(s.contexts, ctx)
	s.mu.Unlock()

	if s.hook != nil {
		s.hook(ctx, cmd)
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.outcome != nil {
		return s.outcome, nil
	}
	return &process.Outcome{Stdout: []byte("Summary: ok")}, nil
}

func (s *stubRunner) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// fakeRecorder captures outcomes and gauge movements.
type fakeRecorder struct {
	metrics.NoopRecorder

	mu              sync.Mutex
	outcomes        []string
	staged, removed int
	cleanupFailures int
	truncated       int
}

func (f *fakeRecorder) RecordOutcome(o string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, o)
}

func (f *fakeRecorder) ArtifactStaged()        { f.mu.Lock(); f.staged++; f.mu.Unlock() }
func (f *fakeRecorder) ArtifactRemoved()       { f.mu.Lock(); f.removed++; f.mu.Unlock() }
func (f *fakeRecorder) RecordCleanupFailure()  { f.mu.Lock(); f.cleanupFailures++; f.mu.Unlock() }
func (f *fakeRecorder) RecordOutputTruncated() { f.mu.Lock(); f.truncated++; f.mu.Unlock() }

func defaultConfig() summarizeUC.Config {
	return summarizeUC.Config{
		APIKey:         "test-key",
		Runtime:        "python",
		Script:         "summarizer.py",
		Timeout:        time.Minute,
		MaxOutputBytes: 1 << 20,
	}
}

func request(text string) entity.SummarizeRequest {
	return entity.SummarizeRequest{Text: text, SummaryType: "bullet", Length: "short"}
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staged artifacts must not outlive the request")
}

/* ───────── tests ───────── */

func TestInvoker_Success(t *testing.T) {
	dir := t.TempDir()
	runner := &stubRunner{outcome: &process.Outcome{
		Stdout: []byte("Summary:\n- first point\n- second point\n"),
		Stderr: []byte("deprecation warning"),
	}}
	rec := &fakeRecorder{}
	inv := summarizeUC.NewInvoker(defaultConfig(), staging.NewStager(dir), runner, rec)

	summary, err := inv.Summarize(context.Background(), request("The quick brown fox."))

	require.NoError(t, err)
	assert.Equal(t, "- first point\n- second point", summary)
	require.Equal(t, 1, runner.callCount())

	cmd := runner.calls[0]
	assert.Equal(t, "python", cmd.Path)
	require.Len(t, cmd.Args, 2)
	assert.Equal(t, "summarizer.py", cmd.Args[0])
	assert.Equal(t, dir, filepath.Dir(cmd.Args[1]))
	assert.True(t, strings.HasPrefix(filepath.Base(cmd.Args[1]), "summary_input_"))
	assert.Contains(t, cmd.Env, "GEMINI_API_KEY=test-key")
	assert.Contains(t, cmd.Env, "SUMMARY_TYPE=bullet")
	assert.Contains(t, cmd.Env, "SUMMARY_LENGTH=short")
	assert.Equal(t, int64(1<<20), cmd.MaxOutputBytes)
	assert.Equal(t, "The quick brown fox.", runner.inputs[0])

	assertDirEmpty(t, dir)
	assert.Equal(t, []string{metrics.OutcomeSuccess}, rec.outcomes)
	assert.Equal(t, 1, rec.staged)
	assert.Equal(t, 1, rec.removed)
}

func TestInvoker_NoScript(t *testing.T) {
	cfg := defaultConfig()
	cfg.Runtime = "summarizer"
	cfg.Script = ""
	runner := &stubRunner{}
	inv := summarizeUC.NewInvoker(cfg, staging.NewStager(t.TempDir()), runner, nil)

	_, err := inv.Summarize(context.Background(), request("text"))

	require.NoError(t, err)
	require.Len(t, runner.calls[0].Args, 1)
	assert.Equal(t, "summarizer", runner.calls[0].Path)
}

func TestInvoker_PrefixStripping(t *testing.T) {
	tests := []struct {
		stdout string
		want   string
	}{
		{stdout: "summary: X", want: "X"},
		{stdout: "SUMMARY:X", want: "X"},
		{stdout: "Summary:   X  ", want: "X"},
		{stdout: "no label here\n", want: "no label here"},
	}

	for _, tt := range tests {
		t.Run(tt.stdout, func(t *testing.T) {
			runner := &stubRunner{outcome: &process.Outcome{Stdout: []byte(tt.stdout)}}
			inv := summarizeUC.NewInvoker(defaultConfig(), staging.NewStager(t.TempDir()), runner, nil)

			summary, err := inv.Summarize(context.Background(), request("text"))

			require.NoError(t, err)
			assert.Equal(t, tt.want, summary)
		})
	}
}

func TestInvoker_MissingCredential(t *testing.T) {
	dir := t.TempDir()
	cfg := defaultConfig()
	cfg.APIKey = ""
	runner := &stubRunner{}
	rec := &fakeRecorder{}
	inv := summarizeUC.NewInvoker(cfg, staging.NewStager(dir), runner, rec)

	_, err := inv.Summarize(context.Background(), request("text"))

	assert.ErrorIs(t, err, summarizeUC.ErrConfiguration)
	assert.Zero(t, runner.callCount())
	assertDirEmpty(t, dir)
	assert.Zero(t, rec.staged)
	assert.Equal(t, []string{metrics.OutcomeConfigurationError}, rec.outcomes)
}

func TestInvoker_StagingFailure(t *testing.T) {
	runner := &stubRunner{}
	rec := &fakeRecorder{}
	inv := summarizeUC.NewInvoker(defaultConfig(), staging.NewStager(filepath.Join(t.TempDir(), "missing")), runner, rec)

	_, err := inv.Summarize(context.Background(), request("text"))

	assert.ErrorIs(t, err, summarizeUC.ErrStaging)
	assert.Zero(t, runner.callCount())
	assert.Equal(t, []string{metrics.OutcomeStagingError}, rec.outcomes)
}

func TestInvoker_RunnerErrors(t *testing.T) {
	tests := []struct {
		name        string
		runErr      error
		wantErr     error
		wantOutcome string
	}{
		{
			name:        "spawn failure",
			runErr:      fmt.Errorf("%w: exec: \"python\": executable file not found in $PATH", process.ErrStart),
			wantErr:     summarizeUC.ErrSpawn,
			wantOutcome: metrics.OutcomeSpawnError,
		},
		{
			name:        "unexpected wait failure",
			runErr:      errors.New("wait for process: broken pipe"),
			wantOutcome: metrics.OutcomeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			rec := &fakeRecorder{}
			inv := summarizeUC.NewInvoker(defaultConfig(), staging.NewStager(dir), &stubRunner{err: tt.runErr}, rec)

			_, err := inv.Summarize(context.Background(), request("text"))

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			for _, sentinel := range []error{summarizeUC.ErrConfiguration, summarizeUC.ErrStaging, summarizeUC.ErrProcessFailure} {
				assert.NotErrorIs(t, err, sentinel)
			}
			assertDirEmpty(t, dir)
			assert.Equal(t, []string{tt.wantOutcome}, rec.outcomes)
		})
	}
}

func TestInvoker_ProcessFailureDoesNotLeakStderr(t *testing.T) {
	dir := t.TempDir()
	runner := &stubRunner{outcome: &process.Outcome{
		ExitStatus: 1,
		Stdout:     []byte("partial"),
		Stderr:     []byte("Traceback: invalid key sk-abcdefghij1234567890"),
	}}
	rec := &fakeRecorder{}
	inv := summarizeUC.NewInvoker(defaultConfig(), staging.NewStager(dir), runner, rec)

	summary, err := inv.Summarize(context.Background(), request("text"))

	assert.Empty(t, summary)
	assert.ErrorIs(t, err, summarizeUC.ErrProcessFailure)
	assert.NotContains(t, err.Error(), "Traceback")
	assert.NotContains(t, err.Error(), "sk-")
	assertDirEmpty(t, dir)
	assert.Equal(t, []string{metrics.OutcomeProcessFailure}, rec.outcomes)
}

func TestInvoker_TruncatedOutputIsRecorded(t *testing.T) {
	rec := &fakeRecorder{}
	runner := &stubRunner{outcome: &process.Outcome{Stdout: []byte("Summary: cut"), Truncated: true}}
	inv := summarizeUC.NewInvoker(defaultConfig(), staging.NewStager(t.TempDir()), runner, rec)

	summary, err := inv.Summarize(context.Background(), request("text"))

	require.NoError(t, err)
	assert.Equal(t, "cut", summary)
	assert.Equal(t, 1, rec.truncated)
}

func TestInvoker_PanicStillCleansUp(t *testing.T) {
	dir := t.TempDir()
	rec := &fakeRecorder{}
	runner := &stubRunner{hook: func(context.Context, process.Command) { panic("runner exploded") }}
	inv := summarizeUC.NewInvoker(defaultConfig(), staging.NewStager(dir), runner, rec)

	assert.PanicsWithValue(t, "runner exploded", func() {
		_, _ = inv.Summarize(context.Background(), request("text"))
	})
	assertDirEmpty(t, dir)
	assert.Equal(t, []string{metrics.OutcomeInternalError}, rec.outcomes)
}

func TestInvoker_ClientCancelDoesNotAbortProcess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &stubRunner{}
	inv := summarizeUC.NewInvoker(defaultConfig(), staging.NewStager(t.TempDir()), runner, nil)

	_, err := inv.Summarize(ctx, request("text"))

	require.NoError(t, err)
	require.Len(t, runner.contexts, 1)
	assert.NoError(t, runner.contexts[0].Err())
	deadline, ok := runner.contexts[0].Deadline()
	require.True(t, ok, "process context must carry the timeout")
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestInvoker_ConcurrencyLimit(t *testing.T) {
	cfg := defaultConfig()
	cfg.MaxConcurrency = 2

	var running, peak atomic.Int32
	runner := &stubRunner{hook: func(context.Context, process.Command) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		running.Add(-1)
	}}
	inv := summarizeUC.NewInvoker(cfg, staging.NewStager(t.TempDir()), runner, nil)

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := inv.Summarize(context.Background(), request(fmt.Sprintf("text %d", i)))
			return err
		})
	}

	require.NoError(t, g.Wait())
	assert.Equal(t, 8, runner.callCount())
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestInvoker_ConcurrencyLimitHonoursCallerCancel(t *testing.T) {
	cfg := defaultConfig()
	cfg.MaxConcurrency = 1

	release := make(chan struct{})
	started := make(chan struct{})
	runner := &stubRunner{hook: func(context.Context, process.Command) {
		close(started)
		<-release
	}}
	dir := t.TempDir()
	inv := summarizeUC.NewInvoker(cfg, staging.NewStager(dir), runner, nil)

	done := make(chan error, 1)
	go func() {
		_, err := inv.Summarize(context.Background(), request("first"))
		done <- err
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := inv.Summarize(ctx, request("second"))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, runner.callCount())
	assertDirEmpty(t, dir)
}

func TestInvoker_QueueWaitExceededIsSpawnFailure(t *testing.T) {
	cfg := defaultConfig()
	cfg.MaxConcurrency = 1
	cfg.MaxQueueWait = 20 * time.Millisecond

	release := make(chan struct{})
	started := make(chan struct{})
	runner := &stubRunner{hook: func(context.Context, process.Command) {
		close(started)
		<-release
	}}
	dir := t.TempDir()
	rec := &fakeRecorder{}
	inv := summarizeUC.NewInvoker(cfg, staging.NewStager(dir), runner, rec)

	done := make(chan error, 1)
	go func() {
		_, err := inv.Summarize(context.Background(), request("first"))
		done <- err
	}()
	<-started

	_, err := inv.Summarize(context.Background(), request("second"))

	assert.ErrorIs(t, err, summarizeUC.ErrSpawn)
	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, runner.callCount())
	assert.Equal(t, 1, rec.staged)
	assertDirEmpty(t, dir)
}

func TestInvoker_CleanupFailureDoesNotAlterResponse(t *testing.T) {
	dir := t.TempDir()
	rec := &fakeRecorder{}
	runner := &stubRunner{
		outcome: &process.Outcome{Stdout: []byte("Summary: X")},
		hook: func(_ context.Context, cmd process.Command) {
			// A non-empty directory in place of the artifact cannot be removed.
			artifact := cmd.Args[len(cmd.Args)-1]
			require.NoError(t, os.Remove(artifact))
			require.NoError(t, os.MkdirAll(filepath.Join(artifact, "child"), 0o700))
		},
	}
	inv := summarizeUC.NewInvoker(defaultConfig(), staging.NewStager(dir), runner, rec)

	summary, err := inv.Summarize(context.Background(), request("text"))

	require.NoError(t, err)
	assert.Equal(t, "X", summary)
	assert.Equal(t, 1, rec.cleanupFailures)
	assert.Equal(t, 0, rec.removed)
	assert.Equal(t, []string{metrics.OutcomeSuccess}, rec.outcomes)
}

func TestInvoker_WaitDrainsInFlightCalls(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	runner := &stubRunner{hook: func(context.Context, process.Command) {
		close(started)
		<-release
	}}
	dir := t.TempDir()
	inv := summarizeUC.NewInvoker(defaultConfig(), staging.NewStager(dir), runner, nil)

	require.NoError(t, inv.Wait(context.Background()), "idle invoker must not block")

	done := make(chan error, 1)
	go func() {
		_, err := inv.Summarize(context.Background(), request("in flight"))
		done <- err
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, inv.Wait(ctx), context.DeadlineExceeded)

	waited := make(chan error, 1)
	go func() { waited <- inv.Wait(context.Background()) }()
	close(release)

	require.NoError(t, <-waited)
	require.NoError(t, <-done)
	assertDirEmpty(t, dir)
}

/* ───────── real process ───────── */

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "helper.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o700))
	return path
}

func realConfig(script string) summarizeUC.Config {
	return summarizeUC.Config{
		APIKey:         "real-key",
		Runtime:        "/bin/sh",
		Script:         script,
		Timeout:        10 * time.Second,
		MaxOutputBytes: 1 << 20,
	}
}

func TestInvoker_RealProcess_ConcurrentRequests(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}

	script := writeScript(t, `test "$GEMINI_API_KEY" = "real-key" || exit 3
printf 'Summary: %s|' "$SUMMARY_TYPE"
cat "$1"
`)
	dir := t.TempDir()
	inv := summarizeUC.NewInvoker(realConfig(script), staging.NewStager(dir), process.NewExecRunner(), nil)

	const n = 10
	results := make([]string, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			req := entity.SummarizeRequest{Text: fmt.Sprintf("document number %d", i), SummaryType: "paragraph"}
			summary, err := inv.Summarize(context.Background(), req)
			results[i] = summary
			return err
		})
	}
	require.NoError(t, g.Wait())

	for i, got := range results {
		assert.Equal(t, fmt.Sprintf("paragraph|document number %d", i), got)
	}
	assertDirEmpty(t, dir)
}

func TestInvoker_RealProcess_NonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}

	script := writeScript(t, "echo 'secret failure detail' >&2\nexit 2\n")
	dir := t.TempDir()
	inv := summarizeUC.NewInvoker(realConfig(script), staging.NewStager(dir), process.NewExecRunner(), nil)

	_, err := inv.Summarize(context.Background(), request("text"))

	assert.ErrorIs(t, err, summarizeUC.ErrProcessFailure)
	assert.NotContains(t, err.Error(), "secret failure detail")
	assertDirEmpty(t, dir)
}

func TestInvoker_RealProcess_Timeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}

	script := writeScript(t, "exec sleep 10\n")
	cfg := realConfig(script)
	cfg.Timeout = 200 * time.Millisecond
	dir := t.TempDir()
	inv := summarizeUC.NewInvoker(cfg, staging.NewStager(dir), process.NewExecRunner(), nil)

	start := time.Now()
	_, err := inv.Summarize(context.Background(), request("text"))

	assert.ErrorIs(t, err, summarizeUC.ErrProcessFailure)
	assert.Less(t, time.Since(start), 8*time.Second)
	assertDirEmpty(t, dir)
}

func TestInvoker_RealProcess_MissingRuntime(t *testing.T) {
	cfg := realConfig("")
	cfg.Runtime = filepath.Join(t.TempDir(), "does-not-exist")
	dir := t.TempDir()
	inv := summarizeUC.NewInvoker(cfg, staging.NewStager(dir), process.NewExecRunner(), nil)

	_, err := inv.Summarize(context.Background(), request("text"))

	assert.ErrorIs(t, err, summarizeUC.ErrSpawn)
	assertDirEmpty(t, dir)
}
