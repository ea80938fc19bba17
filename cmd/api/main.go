package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"text-summarizer/internal/config"
	"text-summarizer/internal/infra/process"
	"text-summarizer/internal/infra/staging"
	"text-summarizer/internal/observability/logging"
	"text-summarizer/internal/observability/metrics"
	"text-summarizer/internal/observability/tracing"
	summarizeUC "text-summarizer/internal/usecase/summarize"

	hhttp "text-summarizer/internal/handler/http"
	"text-summarizer/internal/handler/http/requestid"
	hsummarize "text-summarizer/internal/handler/http/summarize"
)

const (
	serviceName = "text-summarizer"

	// writeTimeoutSlack is added to the request budget so a timed-out helper
	// still gets its 500 response written.
	writeTimeoutSlack = 10 * time.Second

	tracerShutdownTimeout = 5 * time.Second
)

// routes are the paths reported individually in HTTP metrics.
var routes = []string{"/api/summarize", "/health", "/ready", "/live", "/metrics"}

func main() {
	logger := initLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.Summarize.APIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set; summarize requests will fail until it is configured")
	}

	shutdownTracing := tracing.InitProvider(serviceName, cfg.Version)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("failed to shut down tracer provider", slog.Any("error", err))
		}
	}()

	components := setupServer(logger, cfg)
	if err := runServer(logger, cfg, components); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// initLogger initializes the process-wide structured logger.
func initLogger() *slog.Logger {
	logger := logging.NewLogger(os.Stdout)
	slog.SetDefault(logger)
	return logger
}

// ServerComponents holds what the server needs to run and to shut down cleanly.
type ServerComponents struct {
	Handler http.Handler
	Invoker *summarizeUC.Invoker
}

// setupServer wires the summarize pipeline and returns the fully wrapped handler.
func setupServer(logger *slog.Logger, cfg *config.Config) *ServerComponents {
	sc := cfg.Summarize

	invoker := summarizeUC.NewInvoker(summarizeUC.Config{
		APIKey:         sc.APIKey,
		Runtime:        sc.Runtime,
		Script:         sc.Script,
		Timeout:        sc.Timeout,
		MaxOutputBytes: sc.MaxOutputBytes,
		MaxConcurrency: sc.MaxConcurrency,
		MaxQueueWait:   sc.MaxQueueWait,
	}, staging.NewStager(sc.TempDir), process.NewExecRunner(), metrics.NewPrometheusRecorder())

	mux := http.NewServeMux()
	hsummarize.Register(mux, hsummarize.Handler{Svc: invoker, MaxBodyBytes: sc.MaxBodyBytes})

	// ヘルスチェックエンドポイント
	mux.Handle("/health", &hhttp.HealthHandler{
		Runtime:          sc.Runtime,
		Script:           sc.Script,
		TempDir:          sc.TempDir,
		CredentialLoaded: sc.APIKey != "",
		Version:          cfg.Version,
	})
	mux.Handle("/ready", &hhttp.ReadyHandler{Runtime: sc.Runtime})
	mux.Handle("/live", &hhttp.LiveHandler{})
	mux.Handle("/metrics", hhttp.MetricsHandler())

	logger.Info("summarizer configured",
		slog.String("runtime", sc.Runtime),
		slog.String("script", sc.Script),
		slog.String("temp_dir", sc.TempDir),
		slog.Duration("timeout", sc.Timeout),
		slog.Int("max_concurrency", sc.MaxConcurrency),
		slog.Duration("max_queue_wait", sc.MaxQueueWait),
		slog.Bool("credential_loaded", sc.APIKey != ""))

	// Order: Request ID → Tracing → Logging → Recovery → Metrics → Body Limit
	handler := hhttp.Chain(mux,
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Logging(logger),
		hhttp.Recover(logger),
		hhttp.MetricsMiddleware(routes...),
		hhttp.LimitRequestBody(sc.MaxBodyBytes),
	)

	return &ServerComponents{Handler: handler, Invoker: invoker}
}

// newHTTPServer builds the server with a write timeout covering a full summarize request.
func newHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Summarize.RequestBudget() + writeTimeoutSlack,
		IdleTimeout:       120 * time.Second,
	}
}

// shutdownWindow is long enough for every in-flight summarize request to
// finish, respond and remove its staged input.
func shutdownWindow(cfg *config.Config) time.Duration {
	return cfg.Summarize.RequestBudget() + writeTimeoutSlack
}

// runServer listens on the configured address until SIGINT or SIGTERM.
func runServer(logger *slog.Logger, cfg *config.Config, components *ServerComponents) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return err
	}

	logger.Info("server starting",
		slog.String("addr", ln.Addr().String()),
		slog.String("version", cfg.Version))
	return serve(ctx, logger, newHTTPServer(cfg, components.Handler), ln, components.Invoker.Wait, shutdownWindow(cfg))
}

// serve runs srv on ln until ctx is done, then stops accepting requests and
// waits up to window for in-flight requests and for drain.
func serve(
	ctx context.Context,
	logger *slog.Logger,
	srv *http.Server,
	ln net.Listener,
	drain func(context.Context) error,
	window time.Duration,
) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server...", slog.Duration("window", window))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), window)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	if err := drain(shutdownCtx); err != nil {
		logger.Error("summarizations still running at shutdown", slog.Any("error", err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
