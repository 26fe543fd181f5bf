package interfaces

import (
	"context"

	"github.com/m-mizutani/updraft/pkg/domain/model"
)

// WebhookUseCase defines the interface for webhook event processing
type WebhookUseCase interface {
	// ProcessEvent processes a verified webhook event
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) error
}

// ReleaseFetcher fetches release metadata through the cache
type ReleaseFetcher interface {
	// FetchLatest returns the cached release or fetches it; force bypasses the cache
	FetchLatest(ctx context.Context, repo model.Repository, force bool) (*model.ReleaseInfo, error)

	// Cached returns the cached release without any network access
	Cached(repo model.Repository) (*model.ReleaseInfo, bool)

	// Invalidate drops the cached release so the next fetch goes to the registry
	Invalidate(repo model.Repository)
}

// Relocator moves an extracted archive directory to its final name
type Relocator interface {
	Relocate(ctx context.Context, extractedParentDir, desiredName string) (string, error)
}

// RefreshScheduler runs update checks outside of the caller's request path
type RefreshScheduler interface {
	RequestRefresh(ctx context.Context, slugs []string)
}

// UpdateCoordinator orchestrates update checks for tracked components
type UpdateCoordinator interface {
	Components() []model.Component
	Component(slug string) (model.Component, bool)
	State(slug string) (model.ComponentState, bool)
	CheckForUpdate(ctx context.Context, component model.Component) model.CheckResult
	CheckAll(ctx context.Context) []model.CheckResult
	CheckComponents(ctx context.Context, slugs []string) []model.CheckResult
	GetDetails(ctx context.Context, component model.Component) (*model.Details, bool)
	SelectSource(ctx context.Context, component model.Component, extractedDir string) (string, error)
	OnWebhookPublished(ctx context.Context, repo *model.Repository) int
}

// InstallUseCase downloads, stages and activates a new release of a component
type InstallUseCase interface {
	Install(ctx context.Context, component model.Component, decision *model.UpdateDecision) (string, error)
}
