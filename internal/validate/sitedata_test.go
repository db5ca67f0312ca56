package validate

import (
	"strings"
	"testing"

	"github.com/folioapp/folio/internal/model"
)

func validDoc() model.SiteData {
	data := model.DefaultSiteData()
	data.TopLinks = []model.TopLink{{Label: "Blog", URL: "https://example.com/blog"}}
	data.SocialLinks = []model.SocialLink{{Platform: "github", URL: "https://github.com/someone", Icon: "gh"}}
	data.Technologies = []model.Technology{{Name: "Go", Icon: "go", Primary: true}}
	data.Games = []model.Game{{Name: "Chess", URL: "https://example.com/chess", Icon: "chess"}}
	data.Projects = []model.Project{{Title: "folio backend", Description: "CMS for my site", URL: "https://example.com/folio"}}
	return data
}

func fieldsOf(errs []model.FieldError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Field
	}
	return out
}

func hasField(errs []model.FieldError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestSiteData_Valid(t *testing.T) {
	if errs := SiteData(validDoc()); errs != nil {
		t.Errorf("valid document rejected: %v", errs)
	}
}

func TestSiteData_Defaults(t *testing.T) {
	if errs := SiteData(model.DefaultSiteData()); errs != nil {
		t.Errorf("default document rejected: %v", errs)
	}
}

func TestSiteData_SingleField(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.SiteData)
		field   string
		code    string
	}{
		{
			name:   "title too long",
			mutate: func(d *model.SiteData) { d.Title = strings.Repeat("x", 101) },
			field:  "title", code: CodeTooBig,
		},
		{
			name:   "subtitle too long",
			mutate: func(d *model.SiteData) { d.Subtitle = strings.Repeat("x", 151) },
			field:  "subtitle", code: CodeTooBig,
		},
		{
			name:   "bad email",
			mutate: func(d *model.SiteData) { d.Email = "not-an-email" },
			field:  "email", code: CodeInvalidString,
		},
		{
			name:   "bad profile image url",
			mutate: func(d *model.SiteData) { d.ProfileImage = "nota url" },
			field:  "profileImage", code: CodeInvalidString,
		},
		{
			name:   "relative url rejected",
			mutate: func(d *model.SiteData) { d.ProfileImage = "/images/me.png" },
			field:  "profileImage", code: CodeInvalidString,
		},
		{
			name: "link label too long",
			mutate: func(d *model.SiteData) {
				d.TopLinks = []model.TopLink{{Label: strings.Repeat("x", 51), URL: "https://example.com"}}
			},
			field: "topLinks.0.label", code: CodeTooBig,
		},
		{
			name: "project title too short",
			mutate: func(d *model.SiteData) {
				d.Projects = []model.Project{{Title: "tiny", Description: "d", URL: "https://example.com"}}
			},
			field: "projects.0.title", code: CodeTooSmall,
		},
		{
			name:   "bad primary hex",
			mutate: func(d *model.SiteData) { d.Theme.Primary = "#GGGGGG" },
			field:  "themeSettings.primary", code: CodeInvalidString,
		},
		{
			name:   "hex without hash",
			mutate: func(d *model.SiteData) { d.Theme.Accent = "3DDC84" },
			field:  "themeSettings.accent", code: CodeInvalidString,
		},
		{
			name:   "copyright too long",
			mutate: func(d *model.SiteData) { d.Copyright = strings.Repeat("x", 101) },
			field:  "copyright", code: CodeTooBig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDoc()
			tt.mutate(&doc)

			errs := SiteData(doc)
			if len(errs) != 1 {
				t.Fatalf("errors = %v, want exactly one for %s", fieldsOf(errs), tt.field)
			}
			if errs[0].Field != tt.field {
				t.Errorf("field = %q, want %q", errs[0].Field, tt.field)
			}
			if errs[0].Code != tt.code {
				t.Errorf("code = %q, want %q", errs[0].Code, tt.code)
			}
			if errs[0].Message == "" {
				t.Error("expected non-empty message")
			}
		})
	}
}

func TestSiteData_HexColorCase(t *testing.T) {
	doc := validDoc()
	doc.Theme.Primary = "#3ddc84" // lowercase is fine
	doc.Theme.Accent = "#Fa0"     // short form is fine
	if errs := SiteData(doc); errs != nil {
		t.Errorf("case-insensitive hex rejected: %v", errs)
	}
}

func TestSiteData_Exhaustive(t *testing.T) {
	// Two violations must yield two diagnostics, not one.
	doc := validDoc()
	doc.Email = "broken"
	doc.Theme.Primary = "red"

	errs := SiteData(doc)
	if len(errs) != 2 {
		t.Fatalf("errors = %v, want 2", fieldsOf(errs))
	}
	if !hasField(errs, "email") || !hasField(errs, "themeSettings.primary") {
		t.Errorf("missing expected fields in %v", fieldsOf(errs))
	}
}

func TestSiteData_CollectionLimits(t *testing.T) {
	doc := validDoc()
	for i := 0; i <= MaxTopLinks; i++ {
		doc.TopLinks = append(doc.TopLinks, model.TopLink{Label: "L", URL: "https://example.com"})
	}

	errs := SiteData(doc)
	if !hasField(errs, "topLinks") {
		t.Errorf("oversized topLinks accepted, errors = %v", fieldsOf(errs))
	}
	for _, e := range errs {
		if e.Field == "topLinks" && e.Code != CodeTooBig {
			t.Errorf("code = %q, want %q", e.Code, CodeTooBig)
		}
	}
}

func TestSiteData_NestedItemsStillChecked(t *testing.T) {
	// Items inside an oversized collection are validated too.
	doc := validDoc()
	doc.Games = nil
	for i := 0; i < MaxGames+1; i++ {
		doc.Games = append(doc.Games, model.Game{Name: "G", URL: "bad url", Icon: "i"})
	}

	errs := SiteData(doc)
	if !hasField(errs, "games") {
		t.Error("missing collection-size diagnostic")
	}
	if !hasField(errs, "games.0.url") {
		t.Errorf("missing nested item diagnostic, got %v", fieldsOf(errs))
	}
}
