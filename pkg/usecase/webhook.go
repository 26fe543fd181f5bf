package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/updraft/pkg/domain/interfaces"
	"github.com/m-mizutani/updraft/pkg/domain/model"
)

type webhookUseCase struct {
	coordinator interfaces.UpdateCoordinator
}

// NewWebhook creates a new instance of WebhookUseCase
func NewWebhook(coordinator interfaces.UpdateCoordinator) interfaces.WebhookUseCase {
	return &webhookUseCase{
		coordinator: coordinator,
	}
}

// ProcessEvent invalidates cached release metadata when a release was published.
// Other events are logged and ignored.
func (uc *webhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	if event == nil {
		return goerr.New("webhook event is nil")
	}

	logger := ctxlog.From(ctx).With("delivery_id", event.ID)

	repository := ""
	if event.Repository != nil {
		repository = event.Repository.FullName()
	}

	logger.Info("Processing webhook event",
		"action", event.Action,
		"repository", repository,
		"tag_name", event.TagName,
		"has_release", event.HasRelease,
		"actionable", event.IsActionable(),
	)

	if !event.IsActionable() {
		logger.Debug("Ignoring webhook event without published release",
			"action", event.Action,
		)
		return nil
	}

	affected := uc.coordinator.OnWebhookPublished(ctx, event.Repository)
	logger.Info("Release published, update check scheduled",
		"repository", repository,
		"affected_components", affected,
	)

	return nil
}
