package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/folioapp/folio/internal/model"
	"github.com/folioapp/folio/internal/store"
)

func newTestSessions(t *testing.T) (*SessionService, *store.Store) {
	t.Helper()
	st, err := store.Open(store.DriverSQLite, "")
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	sessions := NewSessionService(st, "a-session-secret-at-least-32-chars!", slog.New(slog.NewTextHandler(io.Discard, nil)))
	return sessions, st
}

func testAdmin() *model.Admin {
	return &model.Admin{ID: 1, Username: "admin"}
}

func TestSessionRoundTrip(t *testing.T) {
	sessions, _ := newTestSessions(t)
	ctx := context.Background()

	token, err := sessions.Create(ctx, testAdmin(), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if token == "" || !strings.Contains(token, ".") {
		t.Fatalf("token = %q, want signed id.sig form", token)
	}

	sess, err := sessions.Validate(ctx, token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if sess.AdminID != 1 || sess.Username != "admin" {
		t.Errorf("session = %+v", sess)
	}
	if !sess.ExpiresAt.After(sess.CreatedAt) {
		t.Error("session expires before it was created")
	}
}

func TestSessionTampered(t *testing.T) {
	sessions, _ := newTestSessions(t)
	ctx := context.Background()

	token, err := sessions.Create(ctx, testAdmin(), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", "justanid"},
		{"bad signature", strings.Split(token, ".")[0] + ".AAAA"},
		{"swapped id", "other-id." + strings.Split(token, ".")[1]},
		{"garbage base64", strings.Split(token, ".")[0] + ".!!!!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sessions.Validate(ctx, tt.token); !errors.Is(err, ErrSessionInvalid) {
				t.Errorf("got %v, want ErrSessionInvalid", err)
			}
		})
	}
}

func TestSessionRegeneration(t *testing.T) {
	sessions, _ := newTestSessions(t)
	ctx := context.Background()

	first, err := sessions.Create(ctx, testAdmin(), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// A second login with the first token in hand must issue a new id and
	// kill the old session.
	second, err := sessions.Create(ctx, testAdmin(), first)
	if err != nil {
		t.Fatalf("Create with prior: %v", err)
	}
	if first == second {
		t.Fatal("session id not regenerated on login")
	}

	if _, err := sessions.Validate(ctx, first); !errors.Is(err, ErrSessionInvalid) {
		t.Errorf("prior session still valid: %v", err)
	}
	if _, err := sessions.Validate(ctx, second); err != nil {
		t.Errorf("new session invalid: %v", err)
	}
}

func TestSessionDestroy(t *testing.T) {
	sessions, _ := newTestSessions(t)
	ctx := context.Background()

	token, err := sessions.Create(ctx, testAdmin(), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := sessions.Destroy(ctx, token); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if _, err := sessions.Validate(ctx, token); !errors.Is(err, ErrSessionInvalid) {
		t.Errorf("destroyed session still valid: %v", err)
	}

	// Destroying again, or destroying garbage, is fine.
	if err := sessions.Destroy(ctx, token); err != nil {
		t.Errorf("second Destroy: %v", err)
	}
	if err := sessions.Destroy(ctx, "not-a-token"); err != nil {
		t.Errorf("Destroy of garbage token: %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	sessions, _ := newTestSessions(t)
	sessions.SetTTL(-time.Second) // already expired at creation
	ctx := context.Background()

	token, err := sessions.Create(ctx, testAdmin(), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := sessions.Validate(ctx, token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("got %v, want ErrSessionExpired", err)
	}

	// Detection destroys the record, so the second attempt sees no session
	// at all.
	if _, err := sessions.Validate(ctx, token); !errors.Is(err, ErrSessionInvalid) {
		t.Errorf("got %v, want ErrSessionInvalid after proactive destroy", err)
	}
}

func TestPurgeExpired(t *testing.T) {
	sessions, _ := newTestSessions(t)
	ctx := context.Background()

	sessions.SetTTL(-time.Second)
	if _, err := sessions.Create(ctx, testAdmin(), ""); err != nil {
		t.Fatalf("Create expired: %v", err)
	}
	sessions.SetTTL(time.Hour)
	live, err := sessions.Create(ctx, testAdmin(), "")
	if err != nil {
		t.Fatalf("Create live: %v", err)
	}

	n, err := sessions.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("purged = %d, want 1", n)
	}
	if _, err := sessions.Validate(ctx, live); err != nil {
		t.Errorf("live session purged: %v", err)
	}
}
