package config

import (
	"github.com/m-mizutani/updraft/pkg/domain/interfaces"
	slacknotifier "github.com/m-mizutani/updraft/pkg/infra/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds update notification configuration
type Slack struct {
	WebhookURL string `masq:"secret"`
	Channel    string
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL for update notifications",
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("UPDRAFT_SLACK_WEBHOOK_URL"),
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel overriding the webhook default",
			Destination: &c.Channel,
			Sources:     cli.EnvVars("UPDRAFT_SLACK_CHANNEL"),
		},
	}
}

// Notifier returns the configured notifier, or nil when notifications are disabled
func (c *Slack) Notifier() interfaces.Notifier {
	if c.WebhookURL == "" {
		return nil
	}

	var opts []slacknotifier.Option
	if c.Channel != "" {
		opts = append(opts, slacknotifier.WithChannel(c.Channel))
	}
	return slacknotifier.New(c.WebhookURL, opts...)
}
