package github

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/updraft/pkg/domain/model"
	"github.com/m-mizutani/updraft/pkg/domain/types"
)

// ParseReleaseEvent decodes a release webhook payload into a WebhookEvent.
// Payloads of other event types decode to a non-actionable event.
func ParseReleaseEvent(deliveryID string, payload []byte) (*model.WebhookEvent, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, goerr.New("webhook payload is not a JSON object",
			goerr.T(types.ErrTagMalformedPayload))
	}

	var event github.ReleaseEvent
	if err := json.Unmarshal(trimmed, &event); err != nil {
		return nil, goerr.Wrap(err, "failed to decode webhook payload",
			goerr.T(types.ErrTagMalformedPayload))
	}

	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}

	return &model.WebhookEvent{
		ID:         deliveryID,
		Action:     event.GetAction(),
		Repository: extractRepository(&event),
		HasRelease: event.Release != nil,
		TagName:    event.GetRelease().GetTagName(),
		ReceivedAt: time.Now(),
		RawPayload: payload,
	}, nil
}

// extractRepository returns the repository of event, or nil when the payload
// does not identify one
func extractRepository(event *github.ReleaseEvent) *model.Repository {
	// Use Get*() helper methods for nil-safe field access
	owner := event.GetRepo().GetOwner().GetLogin()
	name := event.GetRepo().GetName()
	if owner != "" && name != "" {
		return &model.Repository{Owner: owner, Repo: name, Branch: event.GetRepo().GetDefaultBranch()}
	}

	if fullName := event.GetRepo().GetFullName(); fullName != "" {
		repo, err := model.ParseRepository(fullName, event.GetRepo().GetDefaultBranch())
		if err == nil {
			return &repo
		}
	}

	return nil
}
