package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/nbapicks/pkg/metrics"
)

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		durationMs := float64(time.Since(start).Milliseconds())
		statusCodeStr := strconv.Itoa(wrapped.statusCode)

		metrics.RecordHTTPRequest(endpoint, r.Method, statusCodeStr)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, statusCodeStr, durationMs)

		if wrapped.statusCode >= http.StatusBadRequest {
			metrics.RecordErrorByEndpoint(endpoint, r.Method, errorType(wrapped.statusCode))
		}
	}
}

// errorType returns the envelope code family for an HTTP status.
func errorType(statusCode int) string {
	switch {
	case statusCode >= http.StatusInternalServerError:
		return codeServerError
	case statusCode == http.StatusUnauthorized:
		return codeUnauthorized
	case statusCode == http.StatusForbidden:
		return codeForbidden
	case statusCode == http.StatusNotFound:
		return codeNotFound
	case statusCode >= http.StatusBadRequest:
		return codeBadRequest
	default:
		return "unknown"
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
