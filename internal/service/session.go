package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/folioapp/folio/internal/model"
	"github.com/folioapp/folio/internal/store"
)

var (
	// ErrSessionInvalid covers missing, malformed, tampered, and unknown
	// session tokens.
	ErrSessionInvalid = errors.New("invalid session")

	// ErrSessionExpired means the session existed but its lifetime elapsed.
	// The session record is destroyed as a side effect of detection.
	ErrSessionExpired = errors.New("session expired")
)

// DefaultSessionTTL is how long a login session stays valid.
const DefaultSessionTTL = 24 * time.Hour

// SessionService issues, validates, and destroys login sessions. Sessions
// live in the store keyed by an opaque UUID; the cookie carries the UUID
// plus an HMAC-SHA256 signature under the session secret, so a tampered
// cookie is rejected before any store lookup.
type SessionService struct {
	store  *store.Store
	secret []byte
	ttl    time.Duration
	logger *slog.Logger
}

// NewSessionService creates a SessionService with the given signing secret.
func NewSessionService(st *store.Store, secret string, logger *slog.Logger) *SessionService {
	return &SessionService{
		store:  st,
		secret: []byte(secret),
		ttl:    DefaultSessionTTL,
		logger: logger,
	}
}

// SetTTL overrides the session lifetime. Tests shorten it.
func (s *SessionService) SetTTL(ttl time.Duration) {
	s.ttl = ttl
}

// TTL returns the configured session lifetime.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Create issues a fresh session for the admin and returns the signed cookie
// token. priorToken, if non-empty, is the token from the incoming request;
// its session is destroyed so every login gets a brand-new identifier
// (session fixation mitigation). Cleanup of the prior session is
// best-effort: a failure is logged, never surfaced.
func (s *SessionService) Create(ctx context.Context, admin *model.Admin, priorToken string) (string, error) {
	if priorToken != "" {
		if id, err := s.verify(priorToken); err == nil {
			if err := s.store.DeleteSession(ctx, id); err != nil {
				s.logger.Warn("destroy prior session failed", "error", err)
			}
		}
	}

	now := time.Now().UTC()
	sess := &model.Session{
		ID:        uuid.NewString(),
		AdminID:   admin.ID,
		Username:  admin.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return s.sign(sess.ID), nil
}

// Validate checks a cookie token and returns the live session it names.
// Expired sessions are destroyed as a side effect and reported as
// ErrSessionExpired.
func (s *SessionService) Validate(ctx context.Context, token string) (*model.Session, error) {
	id, err := s.verify(token)
	if err != nil {
		return nil, err
	}

	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if sess.Expired(time.Now()) {
		s.logger.Warn("expired session used", "username", sess.Username)
		if err := s.store.DeleteSession(ctx, id); err != nil {
			s.logger.Warn("destroy expired session failed", "error", err)
		}
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Destroy removes the session a token names. Destroy is idempotent and
// best-effort: unknown or malformed tokens are ignored, store failures are
// logged and returned but callers treat logout as successful regardless.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	id, err := s.verify(token)
	if err != nil {
		return nil
	}
	if err := s.store.DeleteSession(ctx, id); err != nil {
		s.logger.Error("destroy session failed", "error", err)
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// PurgeExpired deletes all sessions past their expiry. The serve loop runs
// this periodically; SQL stores have no TTL index to do it for us.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteExpiredSessions(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	if n > 0 {
		s.logger.Info("purged expired sessions", "count", n)
	}
	return n, nil
}

// sign produces the cookie value "<id>.<base64url hmac>".
func (s *SessionService) sign(id string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(id))
	return id + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// verify checks a cookie value's signature and returns the session ID.
func (s *SessionService) verify(token string) (string, error) {
	id, sig, ok := strings.Cut(token, ".")
	if !ok || id == "" {
		return "", ErrSessionInvalid
	}
	want, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return "", ErrSessionInvalid
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(id))
	if !hmac.Equal(want, mac.Sum(nil)) {
		return "", ErrSessionInvalid
	}
	return id, nil
}
