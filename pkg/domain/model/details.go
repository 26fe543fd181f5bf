package model

import "time"

// Details is the human-facing payload for a component's info view
type Details struct {
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Version      string          `json:"version"`
	Author       string          `json:"author,omitempty"`
	Homepage     string          `json:"homepage,omitempty"`
	LastUpdated  time.Time       `json:"last_updated"`
	ChangelogURL string          `json:"changelog_url"`
	Sections     DetailsSections `json:"sections"`
	ReleaseNotes string          `json:"release_notes"`
}

// DetailsSections holds the rendered tabs of the info view
type DetailsSections struct {
	Description string `json:"description"`
	Changelog   string `json:"changelog"`
}
