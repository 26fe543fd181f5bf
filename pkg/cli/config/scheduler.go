package config

import (
	"time"

	"github.com/m-mizutani/updraft/pkg/controller/scheduler"
	"github.com/urfave/cli/v3"
)

// Scheduler holds periodic check configuration
type Scheduler struct {
	Interval    time.Duration
	Concurrency int
}

// Flags returns CLI flags for scheduler configuration
func (c *Scheduler) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "check-interval",
			Usage:       "Interval of periodic update checks",
			Value:       scheduler.DefaultInterval,
			Destination: &c.Interval,
			Sources:     cli.EnvVars("UPDRAFT_CHECK_INTERVAL"),
		},
		&cli.IntFlag{
			Name:        "check-concurrency",
			Usage:       "Number of components checked in parallel",
			Value:       4,
			Destination: &c.Concurrency,
			Sources:     cli.EnvVars("UPDRAFT_CHECK_CONCURRENCY"),
		},
	}
}
