// internal/app/features/errors/errlog.go
package errors

import (
	"fmt"
	"html"
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger pairs structured logging with user-facing error pages so
// handlers can report a failure in one call. The op string is for the log
// only; userMsg is what the visitor sees.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(log *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: log}
}

func (e *ErrorLogger) log(r *http.Request, level string, op string, err error) {
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	switch level {
	case "warn":
		e.Log.Warn(op, fields...)
	default:
		e.Log.Error(op, fields...)
	}
}

// LogServerError logs the error and renders a 500-level error page.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, op string, err error, userMsg, backURL string) {
	e.log(r, "error", op, err)

	data := pageData{
		Title:   "Something went wrong",
		Message: userMsg,
		BackURL: backURL,
	}
	w.WriteHeader(http.StatusInternalServerError)
	renderErrorPage(w, r, data)
}

// LogBadRequest logs the error and renders a 400 error page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, op string, err error, userMsg, backURL string) {
	e.log(r, "warn", op, err)

	data := pageData{
		Title:   "Invalid request",
		Message: userMsg,
		BackURL: backURL,
	}
	w.WriteHeader(http.StatusBadRequest)
	renderErrorPage(w, r, data)
}

// LogForbidden logs the error and renders a 403 error page.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, op string, err error, userMsg, backURL string) {
	e.log(r, "warn", op, err)
	RenderForbidden(w, r, userMsg, backURL)
}

// HTMX variants respond with a small HTML fragment instead of a full page,
// so the message can be swapped into the triggering element's error region.

// HTMXLogServerError logs the error and writes a 500 fragment.
func (e *ErrorLogger) HTMXLogServerError(w http.ResponseWriter, r *http.Request, op string, err error, userMsg, backURL string) {
	e.log(r, "error", op, err)
	writeHTMXError(w, http.StatusInternalServerError, userMsg)
}

// HTMXLogBadRequest logs the error and writes a 400 fragment.
func (e *ErrorLogger) HTMXLogBadRequest(w http.ResponseWriter, r *http.Request, op string, err error, userMsg, backURL string) {
	e.log(r, "warn", op, err)
	writeHTMXError(w, http.StatusBadRequest, userMsg)
}

// HTMXLogForbidden logs the error and writes a 403 fragment.
func (e *ErrorLogger) HTMXLogForbidden(w http.ResponseWriter, r *http.Request, op string, err error, userMsg, backURL string) {
	e.log(r, "warn", op, err)
	writeHTMXError(w, http.StatusForbidden, userMsg)
}

func writeHTMXError(w http.ResponseWriter, status int, userMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// HTMX only swaps 2xx responses by default; HX-Reswap plus a 2xx would
	// hide the failure from hx-on error handlers, so keep the real status.
	w.WriteHeader(status)
	fmt.Fprintf(w, `<div class="error-message" role="alert">%s</div>`, html.EscapeString(userMsg))
}
