package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/updraft/pkg/domain/interfaces"
	githubinfra "github.com/m-mizutani/updraft/pkg/infra/github"
	"github.com/urfave/cli/v3"
)

// GitHub holds release registry configuration
type GitHub struct {
	Token          string `masq:"secret"`
	AppID          int64
	InstallationID int64
	PrivateKey     string `masq:"secret"`
	APIURL         string
	Timeout        time.Duration
	WebhookSecret  string `masq:"secret"`
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub token for API requests (optional, raises rate limits)",
			Destination: &c.Token,
			Sources:     cli.EnvVars("UPDRAFT_GITHUB_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID (authenticates as an App installation instead of a token)",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("UPDRAFT_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-app-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("UPDRAFT_GITHUB_APP_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-app-private-key",
			Usage:       "GitHub App private key (PEM)",
			Destination: &c.PrivateKey,
			Sources:     cli.EnvVars("UPDRAFT_GITHUB_APP_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "github-api-url",
			Usage:       "GitHub API base URL (for GitHub Enterprise)",
			Destination: &c.APIURL,
			Sources:     cli.EnvVars("UPDRAFT_GITHUB_API_URL"),
		},
		&cli.DurationFlag{
			Name:        "github-timeout",
			Usage:       "Timeout of a single GitHub API request",
			Value:       githubinfra.DefaultTimeout,
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("UPDRAFT_GITHUB_TIMEOUT"),
		},
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret (empty disables signature verification)",
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("UPDRAFT_GITHUB_WEBHOOK_SECRET"),
		},
	}
}

// NewClient creates the release registry client
func (c *GitHub) NewClient() (interfaces.RegistryClient, error) {
	opts := []githubinfra.Option{
		githubinfra.WithTimeout(c.Timeout),
	}
	switch {
	case c.AppID != 0:
		if c.InstallationID == 0 || c.PrivateKey == "" {
			return nil, goerr.New("GitHub App authentication requires installation ID and private key",
				goerr.V("app_id", c.AppID))
		}
		opts = append(opts, githubinfra.WithAppInstallation(c.AppID, c.InstallationID, []byte(c.PrivateKey)))
	case c.Token != "":
		opts = append(opts, githubinfra.WithToken(c.Token))
	}
	if c.APIURL != "" {
		opts = append(opts, githubinfra.WithBaseURL(c.APIURL))
	}

	client, err := githubinfra.NewClient(opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub client", goerr.V("api_url", c.APIURL))
	}
	return client, nil
}
