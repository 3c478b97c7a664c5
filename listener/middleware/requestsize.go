package middleware

import (
	"log/slog"
	"net/http"
)

const defaultMaxRequestSizeBytes int64 = 1 << 20

// MaxRequestSize limits request bodies to the given number of bytes.
// Requests declaring a larger Content-Length are rejected with 413 up front; others are
// wrapped in http.MaxBytesReader so reading past the limit fails with *http.MaxBytesError.
// A non-positive limit falls back to 1MB with a warning log.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	if limit <= 0 {
		slog.Warn("middleware: limit must be positive, using default",
			"provided", limit, "default", defaultMaxRequestSizeBytes)

		limit = defaultMaxRequestSizeBytes
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				writeError(w, http.StatusRequestEntityTooLarge, "request body too large")

				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
