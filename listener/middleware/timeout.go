package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultTimeoutDuration = 30 * time.Second
	lookupTimedOutBody     = `{"error":"lookup timed out"}`
)

// jsonTimeoutWriter labels the 503 body written by http.TimeoutHandler as JSON.
// Responses that already carry a Content-Type keep it.
type jsonTimeoutWriter struct {
	http.ResponseWriter
}

func (w jsonTimeoutWriter) WriteHeader(code int) {
	if code == http.StatusServiceUnavailable && w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Content-Type-Options", "nosniff")
	}

	w.ResponseWriter.WriteHeader(code)
}

func (w jsonTimeoutWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Timeout bounds how long a lookup may run. Past the deadline the request context is
// cancelled, so file and redis backends stop between data sources, and the caller gets
// 503 with {"error":"lookup timed out"}.
// A non-positive duration falls back to 30s with a warning log.
func Timeout(duration time.Duration) func(http.Handler) http.Handler {
	if duration <= 0 {
		slog.Warn("middleware: lookup timeout must be positive, using default",
			"provided", duration, "default", defaultTimeoutDuration)

		duration = defaultTimeoutDuration
	}

	return func(next http.Handler) http.Handler {
		bounded := http.TimeoutHandler(next, duration, lookupTimedOutBody)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bounded.ServeHTTP(jsonTimeoutWriter{ResponseWriter: w}, r)
		})
	}
}
