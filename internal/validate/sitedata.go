// Package validate checks candidate site-data documents against the schema
// the public frontend depends on. Validation is exhaustive: every violated
// field produces its own diagnostic, so a single failed write reports all
// problems at once.
package validate

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"unicode/utf8"

	"github.com/folioapp/folio/internal/model"
)

// Diagnostic codes, stable across releases; the admin frontend keys off them.
const (
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodeInvalidString = "invalid_string"
)

// Collection size limits.
const (
	MaxTopLinks     = 5
	MaxSocialLinks  = 10
	MaxTechnologies = 20
	MaxGames        = 10
	MaxProjects     = 10
)

var hexColorRe = regexp.MustCompile(`^#([0-9A-Fa-f]{3}){1,2}$`)

// SiteData validates a candidate document. It returns nil when the document
// is acceptable, otherwise one FieldError per violation, in document order.
func SiteData(data model.SiteData) []model.FieldError {
	var v checker

	v.maxLen("title", data.Title, 100)
	v.maxLen("subtitle", data.Subtitle, 150)
	v.email("email", data.Email)
	v.url("profileImage", data.ProfileImage, 0)

	v.maxItems("topLinks", len(data.TopLinks), MaxTopLinks)
	for i, l := range data.TopLinks {
		p := fmt.Sprintf("topLinks.%d", i)
		v.maxLen(p+".label", l.Label, 50)
		v.url(p+".url", l.URL, 255)
	}

	v.maxItems("socialLinks", len(data.SocialLinks), MaxSocialLinks)
	for i, l := range data.SocialLinks {
		p := fmt.Sprintf("socialLinks.%d", i)
		v.maxLen(p+".platform", l.Platform, 50)
		v.url(p+".url", l.URL, 255)
		v.maxLen(p+".icon", l.Icon, 100)
	}

	v.maxItems("technologies", len(data.Technologies), MaxTechnologies)
	for i, tech := range data.Technologies {
		p := fmt.Sprintf("technologies.%d", i)
		v.maxLen(p+".name", tech.Name, 50)
		v.maxLen(p+".icon", tech.Icon, 100)
	}

	v.maxItems("games", len(data.Games), MaxGames)
	for i, g := range data.Games {
		p := fmt.Sprintf("games.%d", i)
		v.maxLen(p+".name", g.Name, 50)
		v.url(p+".url", g.URL, 255)
		v.maxLen(p+".icon", g.Icon, 100)
	}

	v.maxItems("projects", len(data.Projects), MaxProjects)
	for i, prj := range data.Projects {
		p := fmt.Sprintf("projects.%d", i)
		v.minLen(p+".title", prj.Title, 5)
		v.maxLen(p+".title", prj.Title, 100)
		v.maxLen(p+".description", prj.Description, 500)
		v.url(p+".url", prj.URL, 255)
	}

	v.maxLen("copyright", data.Copyright, 100)
	v.hexColor("themeSettings.primary", data.Theme.Primary)
	v.hexColor("themeSettings.accent", data.Theme.Accent)

	return v.errs
}

// checker accumulates diagnostics. Every check appends instead of returning,
// which is what keeps validation exhaustive rather than short-circuiting.
type checker struct {
	errs []model.FieldError
}

func (c *checker) add(field, message, code string) {
	c.errs = append(c.errs, model.FieldError{Field: field, Message: message, Code: code})
}

func (c *checker) maxLen(field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		c.add(field, fmt.Sprintf("must be at most %d characters", max), CodeTooBig)
	}
}

func (c *checker) minLen(field, value string, min int) {
	if utf8.RuneCountInString(value) < min {
		c.add(field, fmt.Sprintf("must be at least %d characters", min), CodeTooSmall)
	}
}

func (c *checker) maxItems(field string, n, max int) {
	if n > max {
		c.add(field, fmt.Sprintf("must contain at most %d items", max), CodeTooBig)
	}
}

func (c *checker) email(field, value string) {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		c.add(field, "must be a valid email address", CodeInvalidString)
	}
}

// url requires an absolute http(s) URL; maxLen 0 means unbounded.
func (c *checker) url(field, value string, maxLen int) {
	u, err := url.Parse(value)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		c.add(field, "must be a valid URL", CodeInvalidString)
		return
	}
	if maxLen > 0 && len(value) > maxLen {
		c.add(field, fmt.Sprintf("must be at most %d characters", maxLen), CodeTooBig)
	}
}

func (c *checker) hexColor(field, value string) {
	if !hexColorRe.MatchString(value) {
		c.add(field, "must be a hex color like #3DDC84", CodeInvalidString)
	}
}
