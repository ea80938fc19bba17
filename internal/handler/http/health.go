// Package http provides the HTTP surface of the summarizer service: middleware,
// Prometheus instrumentation and health endpoints. The summarize endpoint
// itself lives in the summarize subpackage.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"time"
)

// Check status values.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy", "degraded" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // ISO 8601 format
	Checks    map[string]CheckStatus `json:"checks"`    // Status of each check item
	Version   string                 `json:"version"`   // Application version
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthHandler reports whether the helper process can be launched.
// A missing credential is reported as degraded: requests fail with a
// configuration error but the server itself is operational.
type HealthHandler struct {
	Runtime          string
	Script           string
	TempDir          string
	CredentialLoaded bool
	Version          string

	// LookPath resolves the runtime; nil means exec.LookPath.
	LookPath func(file string) (string, error)
}

// ServeHTTP returns 200 when the helper can be launched, 503 otherwise.
// A degraded check keeps the 200 but is reported as the top-level status.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := map[string]CheckStatus{
		"runtime":    checkRuntime(h.lookPath(), h.Runtime),
		"temp_dir":   h.checkTempDir(),
		"credential": h.checkCredential(),
	}
	if h.Script != "" {
		checks["script"] = h.checkScript()
	}

	status := overallStatus(checks)
	statusCode := http.StatusOK
	if status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Default().Warn("health: failed to encode response", slog.Any("error", err))
	}
}

// overallStatus is the worst status among checks: unhealthy over degraded over healthy.
func overallStatus(checks map[string]CheckStatus) string {
	status := StatusHealthy
	for _, c := range checks {
		switch c.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}

func (h *HealthHandler) lookPath() func(string) (string, error) {
	if h.LookPath != nil {
		return h.LookPath
	}
	return exec.LookPath
}

func checkRuntime(lookPath func(string) (string, error), runtime string) CheckStatus {
	path, err := lookPath(runtime)
	if err != nil {
		return CheckStatus{Status: StatusUnhealthy, Message: "runtime not found: " + runtime}
	}
	return CheckStatus{Status: StatusHealthy, Details: map[string]any{"path": path}}
}

func (h *HealthHandler) checkScript() CheckStatus {
	info, err := os.Stat(h.Script)
	if err != nil || info.IsDir() {
		return CheckStatus{Status: StatusUnhealthy, Message: "script not found: " + h.Script}
	}
	return CheckStatus{Status: StatusHealthy}
}

func (h *HealthHandler) checkTempDir() CheckStatus {
	dir := h.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return CheckStatus{Status: StatusUnhealthy, Message: "staging directory unavailable"}
	}
	return CheckStatus{Status: StatusHealthy, Details: map[string]any{"path": dir}}
}

func (h *HealthHandler) checkCredential() CheckStatus {
	if !h.CredentialLoaded {
		return CheckStatus{Status: StatusDegraded, Message: "GEMINI_API_KEY not configured"}
	}
	return CheckStatus{Status: StatusHealthy}
}

// ReadyHandler handles readiness probe requests.
// It is ready once the helper runtime resolves on PATH.
type ReadyHandler struct {
	Runtime  string
	LookPath func(file string) (string, error)
}

// ServeHTTP returns 200 "ready" or 503 when the runtime cannot be found.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	lookPath := h.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	if c := checkRuntime(lookPath, h.Runtime); c.Status != StatusHealthy {
		http.Error(w, "not ready: "+c.Message, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ready")); err != nil {
		slog.Default().Warn("ready: failed to write response", slog.Any("error", err))
	}
}

// LiveHandler handles liveness probe requests.
type LiveHandler struct{}

// ServeHTTP always returns 200 OK while the process is able to respond.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("alive")); err != nil {
		slog.Default().Warn("alive: failed to write response", slog.Any("error", err))
	}
}
