package config

import (
	"time"

	"github.com/m-mizutani/updraft/pkg/infra/cache"
	"github.com/urfave/cli/v3"
)

// Cache holds release cache configuration
type Cache struct {
	Size int
	TTL  time.Duration
}

// Flags returns CLI flags for cache configuration
func (c *Cache) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "cache-size",
			Usage:       "Maximum number of repositories kept in the release cache",
			Value:       cache.DefaultSize,
			Destination: &c.Size,
			Sources:     cli.EnvVars("UPDRAFT_CACHE_SIZE"),
		},
		&cli.DurationFlag{
			Name:        "cache-ttl",
			Usage:       "Lifetime of cached release metadata (default: the check interval)",
			Destination: &c.TTL,
			Sources:     cli.EnvVars("UPDRAFT_CACHE_TTL"),
		},
	}
}

// FollowInterval makes entries live for one check interval unless a TTL was given
func (c *Cache) FollowInterval(interval time.Duration) {
	if c.TTL <= 0 {
		c.TTL = interval
	}
}

// New creates the release cache. Without a TTL entries live for cache.DefaultTTL.
func (c *Cache) New() *cache.ReleaseCache {
	return cache.NewReleaseCache(c.Size, c.TTL)
}
