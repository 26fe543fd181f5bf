package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/updraft/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

func cmdSecret() *cli.Command {
	var settingsCfg config.Settings

	return &cli.Command{
		Name:      "set-webhook-secret",
		Usage:     "Store the webhook secret in the Firestore settings document",
		ArgsUsage: "<secret>",
		Flags:     settingsCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("exactly one secret argument is required")
			}

			store, err := settingsCfg.NewFirestore(ctx, "")
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SaveWebhookSecret(ctx, c.Args().First()); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "webhook secret stored in %s/%s\n", settingsCfg.Collection, settingsCfg.Document)
			return nil
		},
	}
}
