package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/example/recurring-bookings/internal/logging"
)

// RequestLogger attaches a request-scoped logger to the context and logs
// request start and completion with method, path, status and duration.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base.With(
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := logging.ContextWithLogger(r.Context(), logger)
			wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(wrapped, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed",
				"status", wrapped.Status(),
				"bytes", wrapped.BytesWritten(),
				"duration", time.Since(start))
		})
	}
}
