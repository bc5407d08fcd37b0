// Package middleware holds the HTTP middleware of the API.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/vocab-api/internal/api/shared"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
)

// TraceIDHeader carries the trace ID in requests and responses.
const TraceIDHeader = "X-Trace-ID"

// NewTraceMiddleware assigns every request a trace ID and stores a logger
// carrying it in the request context. A trace ID sent by the client is kept.
func NewTraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(TraceIDHeader)
			if traceID == "" || len(traceID) > 64 {
				traceID = shared.NewTraceID()
			}
			w.Header().Set(TraceIDHeader, traceID)

			log := base.With(slog.String("trace_id", traceID))
			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			ctx := logger.WithLogger(shared.WithTraceID(r.Context(), traceID), log)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
