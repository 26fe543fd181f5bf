package interfaces

import (
	"context"

	"github.com/m-mizutani/updraft/pkg/domain/model"
)

// RegistryClient defines operations against the release registry
type RegistryClient interface {
	// FetchLatestRelease fetches the latest published release of a repository
	FetchLatestRelease(ctx context.Context, repo model.Repository) (*model.ReleaseInfo, error)

	// DownloadArchive downloads a release archive from its package URL
	DownloadArchive(ctx context.Context, url string) ([]byte, error)
}

// ReleaseCache holds the most recent successful fetch per repository. Entries are
// replaced wholesale, never modified in place.
type ReleaseCache interface {
	Get(repo model.Repository) (*model.ReleaseInfo, bool)
	Put(repo model.Repository, info *model.ReleaseInfo)
	Invalidate(repo model.Repository)
	Purge()
}

// Notifier announces components that have an update available
type Notifier interface {
	NotifyUpdateAvailable(ctx context.Context, component model.Component, decision *model.UpdateDecision) error
}

// SecretProvider returns the webhook shared secret. An empty secret disables
// signature verification.
type SecretProvider interface {
	WebhookSecret() string
}
