package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/updraft/pkg/domain/model"
	"github.com/m-mizutani/updraft/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

func cmdCheck() *cli.Command {
	var (
		rtCfg runtimeConfig
		slugs []string
	)

	flags := append(rtCfg.Flags(), &cli.StringSliceFlag{
		Name:        "slug",
		Usage:       "Check only the given component (repeatable)",
		Destination: &slugs,
	})

	return &cli.Command{
		Name:  "check",
		Usage: "Check tracked components for newer releases",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := newRuntime(ctx, &rtCfg)
			if err != nil {
				return err
			}

			var results []model.CheckResult
			if len(slugs) > 0 {
				results = rt.coordinator.CheckComponents(ctx, slugs)
			} else {
				results = rt.coordinator.CheckAll(ctx)
			}

			printResults(c.Root().Writer, results)

			for _, r := range results {
				if r.Outcome == model.OutcomeIndeterminate {
					return goerr.New("some components could not be checked")
				}
			}
			return nil
		},
	}
}

func cmdDetails() *cli.Command {
	var (
		rtCfg runtimeConfig
		width int
	)

	flags := append(rtCfg.Flags(), &cli.IntFlag{
		Name:        "width",
		Usage:       "Word wrap width of rendered release notes",
		Value:       100,
		Destination: &width,
	})

	return &cli.Command{
		Name:      "details",
		Usage:     "Show release details of a component",
		ArgsUsage: "<slug>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			slug := c.Args().First()
			if slug == "" {
				return goerr.New("slug is required")
			}

			rt, err := newRuntime(ctx, &rtCfg)
			if err != nil {
				return err
			}

			comp, err := rt.component(slug)
			if err != nil {
				return err
			}

			// Details are served from cache only, so fill it first
			if result := rt.coordinator.CheckForUpdate(ctx, comp); result.Err != nil {
				return result.Err
			}

			details, ok := rt.coordinator.GetDetails(ctx, comp)
			if !ok {
				return goerr.New("no release information available", goerr.V("slug", slug))
			}

			return printDetails(c.Root().Writer, comp, details, width)
		},
	}
}

func cmdInstall() *cli.Command {
	var rtCfg runtimeConfig

	return &cli.Command{
		Name:      "install",
		Usage:     "Download and install the latest release of a component",
		ArgsUsage: "<slug>",
		Flags:     rtCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			slug := c.Args().First()
			if slug == "" {
				return goerr.New("slug is required")
			}

			rt, err := newRuntime(ctx, &rtCfg)
			if err != nil {
				return err
			}

			comp, err := rt.component(slug)
			if err != nil {
				return err
			}

			result := rt.coordinator.CheckForUpdate(ctx, comp)
			switch result.Outcome {
			case model.OutcomeIndeterminate:
				return result.Err
			case model.OutcomeStable:
				fmt.Fprintf(c.Root().Writer, "%s is up to date (%s)\n", comp.Slug, comp.Version)
				return nil
			}

			installDir, err := rt.installer.Install(ctx, comp, result.Decision)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "%s updated %s -> %s in %s\n",
				comp.Slug, comp.Version, result.Decision.TargetVersion, installDir)
			return nil
		},
	}
}

func printResults(w io.Writer, results []model.CheckResult) {
	if w == nil {
		w = os.Stdout
	}

	for _, r := range results {
		switch r.Outcome {
		case model.OutcomeUpdateAvailable:
			fmt.Fprintf(w, "%-24s update available: %s (%s)\n", r.Slug, r.Decision.TargetVersion, r.Decision.PackageURL)
		case model.OutcomeStable:
			fmt.Fprintf(w, "%-24s up to date (latest %s)\n", r.Slug, r.Decision.TargetVersion)
		default:
			reason := "unknown"
			if r.Err != nil {
				reason = r.Err.Error()
				if goerr.HasTag(r.Err, types.ErrTagRegistryUnavailable) {
					reason = "registry unavailable: " + reason
				}
			}
			fmt.Fprintf(w, "%-24s indeterminate: %s\n", r.Slug, reason)
		}
	}
}

func printDetails(w io.Writer, comp model.Component, details *model.Details, width int) error {
	if w == nil {
		w = os.Stdout
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s\n\n", details.Name, details.Version)
	if details.Author != "" {
		fmt.Fprintf(&b, "- **Author:** %s\n", details.Author)
	}
	if details.Homepage != "" {
		fmt.Fprintf(&b, "- **Homepage:** %s\n", details.Homepage)
	}
	fmt.Fprintf(&b, "- **Installed:** %s\n", comp.Version)
	if !details.LastUpdated.IsZero() {
		fmt.Fprintf(&b, "- **Released:** %s\n", details.LastUpdated.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "- **Changelog:** %s\n\n", details.ChangelogURL)
	if details.Sections.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", details.Sections.Description)
	}
	fmt.Fprintf(&b, "## Changes in v%s\n\n%s\n", details.Version, details.ReleaseNotes)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to create markdown renderer")
	}

	out, err := renderer.Render(b.String())
	if err != nil {
		return goerr.Wrap(err, "failed to render release details")
	}

	_, err = io.WriteString(w, out)
	return err
}
