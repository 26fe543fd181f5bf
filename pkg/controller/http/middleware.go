package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/updraft/pkg/utils/errutil"
)

// LoggingMiddleware returns a middleware that logs HTTP requests and carries a
// request scoped logger in the request context
func LoggingMiddleware(ctx context.Context) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			logger := ctxlog.From(ctx).With("request_id", middleware.GetReqID(r.Context()))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Log(r.Context(), requestLogLevel(ww.Status()), "HTTP request",
					"method", r.Method,
					"path", r.URL.Path,
					"remote", r.RemoteAddr,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}()

			next.ServeHTTP(ww, r.WithContext(ctxlog.With(r.Context(), logger)))
		})
	}
}

// RecoverMiddleware turns a handler panic into a 500 response and reports it
func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rv := recover()
			if rv == nil {
				return
			}
			if rv == http.ErrAbortHandler {
				panic(rv)
			}

			err := goerr.New("panic in HTTP handler",
				goerr.V("panic", rv),
				goerr.V("path", r.URL.Path),
				goerr.V("stack", string(debug.Stack())),
			)
			errutil.Handle(r.Context(), "Recovered from panic", err)
			writeError(r.Context(), w, goerr.New("internal server error"), http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes v as a JSON response
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.From(ctx).Error("Failed to encode response", "error", err)
	}
}

// writeError writes {"error": msg} with status
func writeError(ctx context.Context, w http.ResponseWriter, err error, status int) {
	if status >= http.StatusInternalServerError {
		ctxlog.From(ctx).Error("Request failed", "status", status, "error", err)
	} else {
		ctxlog.From(ctx).Warn("Request rejected", "status", status, "error", err)
	}

	writeJSON(ctx, w, status, map[string]string{"error": err.Error()})
}

func requestLogLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
