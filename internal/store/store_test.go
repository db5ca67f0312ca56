package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/folioapp/folio/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(DriverSQLite, "") // in-memory
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("mongodb", "")
	if !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("expected ErrUnknownDriver, got %v", err)
	}
}

func TestCreateAdmin_Singleton(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	admin := &model.Admin{Username: "admin", PasswordHash: "hash"}
	if err := s.CreateAdmin(ctx, admin); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if admin.ID != 1 {
		t.Errorf("ID = %d, want 1", admin.ID)
	}

	// A second admin must be rejected, same or different username.
	second := &model.Admin{Username: "other", PasswordHash: "hash2"}
	if err := s.CreateAdmin(ctx, second); !errors.Is(err, ErrAdminExists) {
		t.Errorf("second CreateAdmin: got %v, want ErrAdminExists", err)
	}

	exists, err := s.HasAdmin(ctx)
	if err != nil {
		t.Fatalf("HasAdmin: %v", err)
	}
	if !exists {
		t.Error("HasAdmin = false after create")
	}
}

func TestCreateAdmin_ConcurrentSetup(t *testing.T) {
	s := newTestStore(t)

	// All goroutines race to create the admin; exactly one may win.
	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			admin := &model.Admin{Username: "admin", PasswordHash: "hash"}
			errs[i] = s.CreateAdmin(context.Background(), admin)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAdminExists):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("winners = %d, want exactly 1", wins)
	}
}

func TestGetAdminByUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetAdminByUsername(ctx, "admin"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := s.CreateAdmin(ctx, &model.Admin{Username: "admin", PasswordHash: "h"}); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	admin, err := s.GetAdminByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetAdminByUsername: %v", err)
	}
	if admin.Username != "admin" || admin.PasswordHash != "h" {
		t.Errorf("got %+v", admin)
	}
}

func TestSiteData_LazySingleton(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// First read seeds defaults.
	data, err := s.GetOrCreateSiteData(ctx)
	if err != nil {
		t.Fatalf("GetOrCreateSiteData: %v", err)
	}
	want := model.DefaultSiteData()
	if data.Title != want.Title || data.Theme.Primary != want.Theme.Primary {
		t.Errorf("seeded data = %+v, want defaults", data)
	}

	// Second read returns the same document, not a re-seed.
	again, err := s.GetOrCreateSiteData(ctx)
	if err != nil {
		t.Fatalf("GetOrCreateSiteData: %v", err)
	}
	if again.Title != data.Title {
		t.Errorf("second read title = %q, want %q", again.Title, data.Title)
	}
}

func TestSiteData_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	data := model.DefaultSiteData()
	data.Title = "Replaced Title"
	data.Projects = []model.Project{
		{Title: "folio backend", Description: "this service", URL: "https://example.com/folio"},
	}

	if err := s.ReplaceSiteData(ctx, data); err != nil {
		t.Fatalf("ReplaceSiteData: %v", err)
	}

	got, err := s.GetOrCreateSiteData(ctx)
	if err != nil {
		t.Fatalf("GetOrCreateSiteData: %v", err)
	}
	if got.Title != "Replaced Title" {
		t.Errorf("Title = %q, want %q", got.Title, "Replaced Title")
	}
	if len(got.Projects) != 1 || got.Projects[0].Title != "folio backend" {
		t.Errorf("Projects = %+v", got.Projects)
	}

	// Replace is wholesale: fields absent from the new document are gone.
	data.Projects = []model.Project{}
	if err := s.ReplaceSiteData(ctx, data); err != nil {
		t.Fatalf("ReplaceSiteData: %v", err)
	}
	got, err = s.GetOrCreateSiteData(ctx)
	if err != nil {
		t.Fatalf("GetOrCreateSiteData: %v", err)
	}
	if len(got.Projects) != 0 {
		t.Errorf("Projects after wholesale replace = %+v, want empty", got.Projects)
	}
}

func TestSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	sess := &model.Session{
		ID:        "sess-1",
		AdminID:   1,
		Username:  "admin",
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := s.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Username != "admin" || got.AdminID != 1 {
		t.Errorf("got %+v", got)
	}

	if err := s.DeleteSession(ctx, "sess-1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := s.GetSession(ctx, "sess-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting again is a no-op (idempotent logout).
	if err := s.DeleteSession(ctx, "sess-1"); err != nil {
		t.Errorf("second DeleteSession: %v", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	live := &model.Session{
		ID: "live", AdminID: 1, Username: "admin",
		CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}
	dead := &model.Session{
		ID: "dead", AdminID: 1, Username: "admin",
		CreatedAt: now.Add(-25 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	}
	for _, sess := range []*model.Session{live, dead} {
		if err := s.CreateSession(ctx, sess); err != nil {
			t.Fatalf("CreateSession(%s): %v", sess.ID, err)
		}
	}

	n, err := s.DeleteExpiredSessions(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}

	if _, err := s.GetSession(ctx, "live"); err != nil {
		t.Errorf("live session gone: %v", err)
	}
	if _, err := s.GetSession(ctx, "dead"); !errors.Is(err, ErrNotFound) {
		t.Errorf("dead session survived: %v", err)
	}
}
