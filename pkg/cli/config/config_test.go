package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/updraft/pkg/cli/config"
	"github.com/m-mizutani/updraft/pkg/controller/scheduler"
	"github.com/m-mizutani/updraft/pkg/infra/cache"
)

// parseFlags runs a throwaway command so flag defaults and env sources apply
func parseFlags(t *testing.T, flags []cli.Flag, args ...string) {
	t.Helper()

	cmd := &cli.Command{
		Name:   "test",
		Flags:  flags,
		Action: func(ctx context.Context, c *cli.Command) error { return nil },
	}
	gt.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...)))
}

func TestServer_Defaults(t *testing.T) {
	var cfg config.Server
	parseFlags(t, cfg.Flags())

	gt.Value(t, cfg.Addr).Equal("localhost:8080")
	gt.Value(t, cfg.ReadHeaderTimeout).Equal(15 * time.Second)
	gt.Value(t, cfg.ShutdownTimeout).Equal(10 * time.Second)
}

func TestServer_EnvOverride(t *testing.T) {
	t.Setenv("UPDRAFT_ADDR", "0.0.0.0:9000")

	var cfg config.Server
	parseFlags(t, cfg.Flags(), "--shutdown-timeout", "3s")

	gt.Value(t, cfg.Addr).Equal("0.0.0.0:9000")
	gt.Value(t, cfg.ShutdownTimeout).Equal(3 * time.Second)
}

func TestCache_Defaults(t *testing.T) {
	var cfg config.Cache
	parseFlags(t, cfg.Flags())

	gt.Value(t, cfg.Size).Equal(cache.DefaultSize)
	gt.Value(t, cfg.TTL).Equal(time.Duration(0))
	gt.NotNil(t, cfg.New())
}

func TestCache_TTLFollowsCheckInterval(t *testing.T) {
	var cacheCfg config.Cache
	var schedCfg config.Scheduler
	parseFlags(t, append(cacheCfg.Flags(), schedCfg.Flags()...))

	cacheCfg.FollowInterval(schedCfg.Interval)
	gt.Value(t, cacheCfg.TTL).Equal(scheduler.DefaultInterval)
	gt.Value(t, cache.DefaultTTL).Equal(scheduler.DefaultInterval)

	var custom config.Cache
	var customSched config.Scheduler
	parseFlags(t, append(custom.Flags(), customSched.Flags()...), "--check-interval", "30m")
	custom.FollowInterval(customSched.Interval)
	gt.Value(t, custom.TTL).Equal(30 * time.Minute)

	var explicit config.Cache
	parseFlags(t, explicit.Flags(), "--cache-ttl", "5m")
	explicit.FollowInterval(scheduler.DefaultInterval)
	gt.Value(t, explicit.TTL).Equal(5 * time.Minute)
}

func TestManifest_Defaults(t *testing.T) {
	var cfg config.Manifest
	parseFlags(t, cfg.Flags(), "-m", "plugins.toml")

	gt.Value(t, cfg.Path).Equal("plugins.toml")
}

func TestGitHub_NewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.GitHub
		wantErr bool
	}{
		{
			name: "anonymous",
			cfg:  config.GitHub{},
		},
		{
			name: "token",
			cfg:  config.GitHub{Token: "ghp_token", APIURL: "https://ghe.example.com/api/v3/"},
		},
		{
			name:    "app without installation",
			cfg:     config.GitHub{AppID: 1, PrivateKey: "key"},
			wantErr: true,
		},
		{
			name:    "app without private key",
			cfg:     config.GitHub{AppID: 1, InstallationID: 2},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := tt.cfg.NewClient()
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.NotNil(t, client)
		})
	}
}

func TestSettings_Enabled(t *testing.T) {
	gt.False(t, (&config.Settings{}).Enabled())
	gt.True(t, (&config.Settings{ProjectID: "my-project"}).Enabled())

	_, err := (&config.Settings{}).NewFirestore(context.Background(), "fallback")
	gt.Error(t, err)
}
