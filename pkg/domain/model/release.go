package model

import "time"

// ReleaseInfo is a snapshot of a registry's latest release. A value is never
// modified after it has been cached; a new fetch produces a new value.
type ReleaseInfo struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Body        string    `json:"body"`
	ArchiveURL  string    `json:"archive_url"`
	HTMLURL     string    `json:"html_url,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Version returns the tag with its leading v/V prefix removed
func (r *ReleaseInfo) Version() string {
	return NormalizeTag(r.TagName)
}
