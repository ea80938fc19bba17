// Package respond writes JSON responses for the summarizer API.
// Error responses always have the shape {"error": "..."}; internal details are
// logged with secrets masked and never reach the client.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"text-summarizer/internal/observability/logging"
)

// InternalErrorMessage is the generic message for unexpected failures.
const InternalErrorMessage = "Internal server error"

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// headers are already sent
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes {"error": msg} with the given status code.
func Error(w http.ResponseWriter, code int, msg string) {
	JSON(w, code, ErrorBody{Error: msg})
}

// AppError is an error type that carries a user-facing message.
type AppError struct {
	UserMsg string // Message to display to users
	Err     error  // Internal error (logged for debugging)
	Code    int    // HTTP status code
}

// Error returns the error message, implementing the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

// Unwrap returns the underlying error, implementing the errors.Unwrap interface.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError with the given parameters.
func NewAppError(code int, userMsg string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Err: err}
}

// SafeError writes err to the client without leaking internals.
// An AppError yields its status and user message; its wrapped error is logged
// at error level for 5xx and at debug level otherwise. Any other error is
// logged and answered with 500 "Internal server error".
func SafeError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	logger := logging.FromContext(ctx)

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Err != nil {
			level := slog.LevelDebug
			if appErr.Code >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(ctx, level, "application error",
				slog.String("status", http.StatusText(appErr.Code)),
				slog.Int("code", appErr.Code),
				slog.String("user_message", appErr.UserMsg),
				slog.String("error", SanitizeError(appErr.Err)))
		}
		Error(w, appErr.Code, appErr.UserMsg)
		return
	}

	logger.Error("internal server error",
		slog.Int("code", http.StatusInternalServerError),
		slog.String("error", SanitizeError(err)))
	Error(w, http.StatusInternalServerError, InternalErrorMessage)
}
