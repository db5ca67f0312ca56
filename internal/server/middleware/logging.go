package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Logger emits one structured log line per completed request, keyed by the
// request ID, so it must sit after RequestID in the chain. Client errors log
// at warn, server errors at error.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(sw, r)

			status := sw.status
			if status == 0 {
				status = http.StatusOK
			}
			line := logger.With(
				"request_id", GetRequestID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
			args := []any{
				"status", status,
				"bytes", sw.written,
				"elapsed", time.Since(start),
			}
			msg := r.Method + " " + r.URL.Path
			switch {
			case status >= 500:
				line.Error(msg, args...)
			case status >= 400:
				line.Warn(msg, args...)
			default:
				line.Info(msg, args...)
			}
		})
	}
}

// statusWriter records the status code and byte count a handler writes.
// status stays 0 until the handler commits a header.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written int
}

func (sw *statusWriter) WriteHeader(code int) {
	if sw.status != 0 {
		return
	}
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.WriteHeader(http.StatusOK)
	}
	n, err := sw.ResponseWriter.Write(b)
	sw.written += n
	return n, err
}

// Unwrap exposes the wrapped writer for http.ResponseController and
// interface assertions further down the chain.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}
