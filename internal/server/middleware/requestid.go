package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

// RequestIDKey is the context key for the request ID.
const RequestIDKey contextKey = "request_id"

// requestIDHeader carries the ID in and out of the process.
const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an identifier for log correlation. A
// client-supplied X-Request-ID is honored so the ID stays stable across a
// proxy hop; otherwise a fresh UUID v7 is minted. The ID ends up on the
// response header and the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.Must(uuid.NewV7()).String()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), RequestIDKey, id),
		))
	})
}

// GetRequestID returns the request ID from ctx, or an empty string when the
// RequestID middleware did not run.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
