package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	accountApp "github.com/nitro-scheduler/nitro/internal/account/application"
	"github.com/nitro-scheduler/nitro/internal/shared/apperror"
	"github.com/nitro-scheduler/nitro/pkg/observability"
)

type loggerCtxKey struct{}

func withLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

func loggerFromRequest(r *http.Request) *slog.Logger {
	if logger, ok := r.Context().Value(loggerCtxKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// withCorrelationID reads X-Correlation-ID (generating one if absent),
// stashes it and a per-request logger in the context, and echoes it back
// on the response so a caller can trace a request through logs.
func withCorrelationID(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := observability.NewRequestContext(r.Context(), r.Header.Get("X-Correlation-ID"))
			correlationID := observability.CorrelationIDFromContext(ctx)
			w.Header().Set("X-Correlation-ID", correlationID)

			logger := base.With(observability.CorrelationIDKey, correlationID)
			ctx = withLogger(ctx, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// withRequestLog logs each request's method, path, status, and duration
// after it completes.
func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		loggerFromRequest(r).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			observability.DurationKey, time.Since(start).Milliseconds(),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// withRecover turns a panicking handler into a 500 instead of crashing
// the server process.
func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				loggerFromRequest(r).Error("panic recovered", "panic", rec)
				writeError(w, r, apperror.Internal("internal error", nil))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requireAPIKey requires an X-API-Key header and resolves it to an
// account id via resolver, storing the result in the request context for
// handlers to read with accountIDFromContext.
func requireAPIKey(resolver *accountApp.APIKeyResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				writeError(w, r, apperror.UnidentifiableClient("missing X-API-Key header", nil))
				return
			}

			accountID, err := resolver.Resolve(r.Context(), key)
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := withAccountID(r.Context(), accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
