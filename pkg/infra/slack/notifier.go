package slack

import (
	"context"
	"fmt"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/updraft/pkg/domain/interfaces"
	"github.com/m-mizutani/updraft/pkg/domain/model"
	"github.com/slack-go/slack"
)

// Notifier posts update announcements to a Slack incoming webhook
type Notifier struct {
	webhookURL string
	channel    string
}

var _ interfaces.Notifier = (*Notifier)(nil)

// Option is a functional option for Notifier
type Option func(*Notifier)

// WithChannel overrides the channel configured for the incoming webhook
func WithChannel(channel string) Option {
	return func(n *Notifier) {
		n.channel = channel
	}
}

// New creates a new Notifier
func New(webhookURL string, opts ...Option) *Notifier {
	n := &Notifier{webhookURL: webhookURL}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NotifyUpdateAvailable announces that a newer release of component exists
func (n *Notifier) NotifyUpdateAvailable(ctx context.Context, component model.Component, decision *model.UpdateDecision) error {
	name := component.Name
	if name == "" {
		name = component.Slug
	}

	msg := &slack.WebhookMessage{
		Channel: n.channel,
		Text:    fmt.Sprintf("Update available for %s: %s → %s", name, component.Version, decision.TargetVersion),
		Attachments: []slack.Attachment{
			{
				Color:     "#2eb886",
				Title:     name + " " + decision.TargetVersion,
				TitleLink: decision.InfoURL,
				Fields: []slack.AttachmentField{
					{Title: "Installed", Value: component.Version, Short: true},
					{Title: "Available", Value: decision.TargetVersion, Short: true},
					{Title: "Repository", Value: component.Repository.FullName(), Short: false},
				},
			},
		},
	}

	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post slack message",
			goerr.V("slug", component.Slug))
	}

	ctxlog.From(ctx).Debug("Update notification sent",
		"slug", component.Slug,
		"version", decision.TargetVersion,
	)
	return nil
}
