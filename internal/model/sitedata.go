package model

// SiteData is the full content document rendered by the public frontend.
// It is persisted as a single JSON document and always written wholesale:
// an update replaces the entire document, never individual fields.
type SiteData struct {
	Title        string       `json:"title"`
	Subtitle     string       `json:"subtitle"`
	Email        string       `json:"email"`
	ProfileImage string       `json:"profileImage"`
	TopLinks     []TopLink    `json:"topLinks"`
	SocialLinks  []SocialLink `json:"socialLinks"`
	Technologies []Technology `json:"technologies"`
	Games        []Game       `json:"games"`
	Projects     []Project    `json:"projects"`
	Copyright    string       `json:"copyright"`
	Theme        Theme        `json:"themeSettings"`
}

// TopLink is a prominent navigation link shown at the top of the site.
type TopLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// SocialLink points at a social profile with its display icon.
type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Icon     string `json:"icon"`
}

// Technology is an entry in the skills section. Primary entries are
// highlighted by the frontend.
type Technology struct {
	Name    string `json:"name"`
	Icon    string `json:"icon"`
	Primary bool   `json:"primary"`
}

// Game is an entry in the games showcase.
type Game struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Icon string `json:"icon"`
}

// Project is an entry in the projects showcase.
type Project struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Theme holds the two hex color values the frontend themes itself with.
type Theme struct {
	Primary string `json:"primary"`
	Accent  string `json:"accent"`
}

// DefaultSiteData returns the document the store seeds on first access.
// Slices are non-nil so the JSON encoding is always [] rather than null.
func DefaultSiteData() SiteData {
	return SiteData{
		Title:        "My Personal Site",
		Subtitle:     "Code, Games, Music",
		Email:        "hello@example.com",
		ProfileImage: "https://avatar.iran.liara.run/public",
		TopLinks:     []TopLink{},
		SocialLinks:  []SocialLink{},
		Technologies: []Technology{},
		Games:        []Game{},
		Projects:     []Project{},
		Copyright:    "© 2025 All rights reserved.",
		Theme: Theme{
			Primary: "#3DDC84",
			Accent:  "#7129EE",
		},
	}
}
