package middleware

import (
	"net/http"
	"strconv"
)

// writeError writes a JSON error body matching the lookup API's error format.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	_, _ = w.Write([]byte(`{"error":` + strconv.Quote(message) + "}\n"))
}
