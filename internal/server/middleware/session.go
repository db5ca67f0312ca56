package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/folioapp/folio/internal/service"
)

type contextKeyAuth string

// AuthPrincipalKey is the context key for the authenticated principal.
const AuthPrincipalKey contextKeyAuth = "auth_principal"

// sessionCookieName must match the cookie issued by the admin handlers.
const sessionCookieName = "folio_session"

// Principal represents the authenticated admin making the request.
type Principal struct {
	AdminID   int64
	Username  string
	SessionID string
}

// SessionAuth returns an HTTP middleware that resolves the session cookie
// into a Principal on the request context. Requests without a cookie, or
// with an invalid or expired one, pass through unauthenticated; enforcing
// authentication is RequireAdmin's job. Expired sessions are destroyed as a
// side effect of validation. A store failure during validation is a 500,
// not an anonymous pass-through: the caller may well hold a valid session.
func SessionAuth(sessions *service.SessionService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(sessionCookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := sessions.Validate(r.Context(), c.Value)
			if err != nil {
				if errors.Is(err, service.ErrSessionInvalid) || errors.Is(err, service.ErrSessionExpired) {
					next.ServeHTTP(w, r)
					return
				}
				logger.Error("session validation failed", "error", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":{"code":500,"message":"Session validation failed"}}`))
				return
			}

			principal := &Principal{
				AdminID:   sess.AdminID,
				Username:  sess.Username,
				SessionID: sess.ID,
			}
			ctx := context.WithValue(r.Context(), AuthPrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin returns an HTTP middleware that rejects unauthenticated
// requests with a 401. It must be used after SessionAuth in the chain.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetPrincipal(r.Context()) == nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				// Manually construct JSON to avoid an import cycle with the
				// handler package.
				w.Write([]byte(`{"error":{"code":401,"message":"Authentication required"}}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetPrincipal extracts the authenticated principal from the context.
// Returns nil if no principal is present (i.e., unauthenticated request).
func GetPrincipal(ctx context.Context) *Principal {
	if p, ok := ctx.Value(AuthPrincipalKey).(*Principal); ok {
		return p
	}
	return nil
}
