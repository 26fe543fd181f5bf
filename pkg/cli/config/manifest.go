package config

import (
	"github.com/m-mizutani/updraft/pkg/domain/model"
	"github.com/m-mizutani/updraft/pkg/infra/manifest"
	"github.com/urfave/cli/v3"
)

// Manifest holds the component declaration file location
type Manifest struct {
	Path string
}

// Flags returns CLI flags for manifest configuration
func (c *Manifest) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "manifest",
			Aliases:     []string{"m"},
			Usage:       "Path to the TOML component manifest",
			Value:       "updraft.toml",
			Destination: &c.Path,
			Sources:     cli.EnvVars("UPDRAFT_MANIFEST"),
		},
	}
}

// Load reads the declared components
func (c *Manifest) Load() ([]model.Component, error) {
	return manifest.Load(c.Path)
}
