package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical detail and the request ID, then
// returned to the client as {"error": <user message>, "code": <support code>}
// using core.MapError. The HTTP status is chosen from the sentinel the error
// wraps.

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/certvault/internal/core"
	"github.com/JonMunkholm/certvault/internal/logging"
)

var errRateLimited = errors.New("rate limit exceeded")

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps an error onto an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrMissingFields), errors.Is(err, core.ErrMalformedBatch):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrDuplicateCode):
		return http.StatusConflict
	case errors.Is(err, core.ErrBatchTooLarge), errors.Is(err, core.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the mapped user message.
// Client errors are logged at warn, server errors at error. Errors with no
// user message mapping are flagged as unmapped.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	// Unmapped errors reach the client as ERR000; keep the type so the
	// pattern table can be extended.
	if !core.IsUserFacing(err) {
		attrs = append(attrs, "error_type", fmt.Sprintf("%T", rootCause(err)), "unmapped", true)
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error", attrs...)

	writeJSON(w, r, status, ErrorResponse{
		Error: userMsg.Message,
		Code:  userMsg.Code,
	})
}

// rootCause follows the Unwrap chain to the innermost error.
func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
