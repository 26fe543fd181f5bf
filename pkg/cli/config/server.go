package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Server holds HTTP server configuration
type Server struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address of the webhook and API server",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("UPDRAFT_ADDR"),
		},
		&cli.DurationFlag{
			Name:        "read-header-timeout",
			Usage:       "Time allowed to read request headers",
			Value:       15 * time.Second,
			Destination: &c.ReadHeaderTimeout,
			Sources:     cli.EnvVars("UPDRAFT_READ_HEADER_TIMEOUT"),
		},
		&cli.DurationFlag{
			Name:        "shutdown-timeout",
			Usage:       "Grace period for in-flight requests on shutdown",
			Value:       10 * time.Second,
			Destination: &c.ShutdownTimeout,
			Sources:     cli.EnvVars("UPDRAFT_SHUTDOWN_TIMEOUT"),
		},
	}
}
