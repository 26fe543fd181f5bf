package model

import "time"

// ActionPublished is the only release action that triggers a refresh
const ActionPublished = "published"

// WebhookEvent represents a verified notification received from the release registry
type WebhookEvent struct {
	ID         string      // Retrieved from X-GitHub-Delivery header, generated when absent
	Action     string      // Event action (e.g., published, created)
	Repository *Repository // Repository the release belongs to, nil when the payload omits it
	HasRelease bool        // Whether the payload carried a release object
	TagName    string      // Tag of the announced release, informational
	ReceivedAt time.Time   // Time when the event was received
	RawPayload []byte      // Raw JSON payload
}

// IsActionable checks if the event should invalidate cached release metadata
func (e *WebhookEvent) IsActionable() bool {
	return e.Action == ActionPublished && e.HasRelease
}
