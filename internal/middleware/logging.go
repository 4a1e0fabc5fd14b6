package middleware

import (
	"net/http"
	"time"

	"agrolog/groundstation/internal/logging"
)

// RequestLogging logs one structured line per request. The router only
// mounts it when GS_DEBUG_HTTP is set.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(rec, r)

		requestID, _ := r.Context().Value(RequestIDKey).(string)
		logging.Info("http request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote", r.RemoteAddr,
		)
	})
}
