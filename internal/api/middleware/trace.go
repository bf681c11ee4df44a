// Package middleware contains HTTP middleware shared by the task routes.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasktrack-api/internal/api/shared"
	"github.com/phrazzld/tasktrack-api/internal/platform/logger"
)

// TraceIDHeader carries the request's trace ID in both directions.
const TraceIDHeader = "X-Trace-ID"

// maxForwardedTraceIDLength bounds a client-supplied trace ID.
const maxForwardedTraceIDLength = 128

// NewTraceMiddleware returns middleware that tags every request with a trace
// ID and stores a logger carrying that ID in the request context.
// A trace ID supplied in the X-Trace-ID request header is reused.
func NewTraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if forwarded := r.Header.Get(TraceIDHeader); forwarded != "" &&
				len(forwarded) <= maxForwardedTraceIDLength {
				ctx = shared.WithTraceID(ctx, forwarded)
			} else {
				ctx = shared.SetTraceID(ctx)
			}

			traceID := shared.GetTraceID(ctx)
			log := base.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, log)

			w.Header().Set(TraceIDHeader, traceID)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
