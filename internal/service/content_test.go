package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/folioapp/folio/internal/model"
	"github.com/folioapp/folio/internal/store"
)

func newTestContent(t *testing.T) *ContentService {
	t.Helper()
	st, err := store.Open(store.DriverSQLite, "")
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewContentService(st, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGetSiteData_SeedsDefaults(t *testing.T) {
	content := newTestContent(t)

	data, err := content.GetSiteData(context.Background())
	if err != nil {
		t.Fatalf("GetSiteData: %v", err)
	}
	want := model.DefaultSiteData()
	if data.Title != want.Title {
		t.Errorf("Title = %q, want %q", data.Title, want.Title)
	}
}

func TestUpdateSiteData_RoundTrip(t *testing.T) {
	content := newTestContent(t)
	ctx := context.Background()

	data := model.DefaultSiteData()
	data.Title = "New Title"
	data.Technologies = []model.Technology{{Name: "Go", Icon: "go", Primary: true}}

	if err := content.UpdateSiteData(ctx, data); err != nil {
		t.Fatalf("UpdateSiteData: %v", err)
	}

	got, err := content.GetSiteData(ctx)
	if err != nil {
		t.Fatalf("GetSiteData: %v", err)
	}
	if got.Title != "New Title" {
		t.Errorf("Title = %q, want %q", got.Title, "New Title")
	}
	if len(got.Technologies) != 1 || got.Technologies[0].Name != "Go" {
		t.Errorf("Technologies = %+v", got.Technologies)
	}
}

func TestUpdateSiteData_Rejected(t *testing.T) {
	content := newTestContent(t)
	ctx := context.Background()

	data := model.DefaultSiteData()
	data.Email = "not-an-email"
	data.Theme.Primary = "nope"

	err := content.UpdateSiteData(ctx, data)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want *ValidationError", err)
	}
	if len(verr.Errors) != 2 {
		t.Errorf("violations = %d, want 2", len(verr.Errors))
	}

	// The rejected write must not have touched the document.
	got, err := content.GetSiteData(ctx)
	if err != nil {
		t.Fatalf("GetSiteData: %v", err)
	}
	if got.Email == "not-an-email" {
		t.Error("rejected write persisted")
	}
}
