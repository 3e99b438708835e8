package web

// errors.go provides unified error response handling for the web layer.
//
// Every handler error goes through respondError: the technical error is
// logged with the request id, and the client gets the mapped user message
// as JSON, an HTMX fragment, or plain text.

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/gridkit/internal/core"
	"github.com/JonMunkholm/gridkit/internal/logging"
	"github.com/JonMunkholm/gridkit/internal/store"
	"github.com/JonMunkholm/gridkit/internal/web/views"
)

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`

	// Set when a commit or import was refused for data problems.
	Validation []core.ValidationError `json:"validation,omitempty"`
	Import     []core.ImportError     `json:"importErrors,omitempty"`
}

// respondError logs err and writes the user-facing message with status.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	writeError(w, r, err, status, ErrorResponse{})
}

// respondErrorStatus derives the status from the error itself.
func respondErrorStatus(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, err, statusFor(err))
}

// writeError is respondError with extra detail merged into the JSON body.
func writeError(w http.ResponseWriter, r *http.Request, err error, status int, detail ErrorResponse) {
	msg := core.MapError(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		views.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
	case wantsJSON(r):
		detail.Error = msg.Message
		detail.Message = msg.Message
		detail.Action = msg.Action
		detail.Code = msg.Code
		writeJSON(w, status, detail)
	default:
		http.Error(w, msg.Message+" ("+msg.Code+")", status)
	}
}

// statusFor maps the engine's error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var (
		notFound  *core.NotFoundError
		dupField  *core.DuplicateFieldError
		dupID     *core.DuplicateIDError
		fileError *core.FileError
	)

	switch {
	case errors.As(err, &notFound), errors.Is(err, store.ErrNoSnapshot):
		return http.StatusNotFound
	case errors.As(err, &dupField), errors.As(err, &dupID):
		return http.StatusConflict
	case errors.Is(err, core.ErrSchema), errors.Is(err, core.ErrEmptySelection):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotEditing), errors.Is(err, core.ErrNothingPending):
		return http.StatusConflict
	case errors.Is(err, core.ErrImportRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTooManyImports):
		return http.StatusTooManyRequests
	case errors.As(err, &fileError), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client should get a JSON body. API routes
// always do.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// writeJSON encodes v with status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
