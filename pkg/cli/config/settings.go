package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/updraft/pkg/infra/settings"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

// Settings holds the location of persisted settings
type Settings struct {
	ProjectID  string
	DatabaseID string
	Collection string
	Document   string
	// Credentials is a service account key file; empty uses application default credentials
	Credentials string
}

// Flags returns CLI flags for settings configuration
func (c *Settings) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project holding the settings document (empty uses flags only)",
			Destination: &c.ProjectID,
			Sources:     cli.EnvVars("UPDRAFT_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Destination: &c.DatabaseID,
			Sources:     cli.EnvVars("UPDRAFT_FIRESTORE_DATABASE_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-collection",
			Usage:       "Firestore collection of the settings document",
			Value:       "updraft",
			Destination: &c.Collection,
			Sources:     cli.EnvVars("UPDRAFT_FIRESTORE_COLLECTION"),
		},
		&cli.StringFlag{
			Name:        "firestore-document",
			Usage:       "Firestore settings document ID",
			Value:       "settings",
			Destination: &c.Document,
			Sources:     cli.EnvVars("UPDRAFT_FIRESTORE_DOCUMENT"),
		},
		&cli.StringFlag{
			Name:        "firestore-credentials",
			Usage:       "Service account key file for Firestore",
			Destination: &c.Credentials,
			Sources:     cli.EnvVars("UPDRAFT_FIRESTORE_CREDENTIALS"),
		},
	}
}

// Enabled reports whether settings are stored in Firestore
func (c *Settings) Enabled() bool {
	return c.ProjectID != ""
}

// NewFirestore connects to the settings document. fallback is served until the
// document holds a secret.
func (c *Settings) NewFirestore(ctx context.Context, fallback string) (*settings.Firestore, error) {
	if !c.Enabled() {
		return nil, goerr.New("firestore project ID is not configured")
	}

	var opts []option.ClientOption
	if c.Credentials != "" {
		opts = append(opts, option.WithCredentialsFile(c.Credentials))
	}
	return settings.NewFirestore(ctx, c.ProjectID, c.DatabaseID, c.Collection, c.Document, fallback, opts...)
}
