package config_test

import (
	"bytes"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/updraft/pkg/cli/config"
)

func TestLogger_Configure(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantErr bool
	}{
		{name: "debug", level: "debug"},
		{name: "info", level: "info"},
		{name: "warn", level: "warn"},
		{name: "error", level: "error"},
		{name: "upper case is accepted", level: "WARN"},
		{name: "mixed case is accepted", level: "Debug"},
		{name: "unknown level", level: "verbose", wantErr: true},
		{name: "empty level", level: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, jsonOut := range []bool{true, false} {
				logger := &config.Logger{Level: tt.level, JSON: jsonOut}

				var buf bytes.Buffer
				result, err := logger.ConfigureWriter(&buf)
				if tt.wantErr {
					gt.Error(t, err)
					continue
				}
				gt.NoError(t, err)
				gt.NotNil(t, result)
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := &config.Logger{Level: "warn", JSON: true}

	result, err := logger.ConfigureWriter(&buf)
	gt.NoError(t, err)

	result.Info("routine check finished")
	result.Warn("registry unreachable")

	gt.String(t, buf.String()).NotContains("routine check finished")
	gt.String(t, buf.String()).Contains("registry unreachable")
}

func TestLogger_Flags(t *testing.T) {
	logger := &config.Logger{}
	flags := logger.Flags()
	gt.Number(t, len(flags)).Equal(2)

	names := make(map[string]bool)
	for _, flag := range flags {
		names[flag.Names()[0]] = true
	}
	gt.True(t, names["log-level"])
	gt.True(t, names["log-json"])
}

func TestLogger_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := &config.Logger{Level: "info", JSON: true}

	result, err := logger.ConfigureWriter(&buf)
	gt.NoError(t, err)

	result.Info("configuration",
		"github", config.GitHub{Token: "ghp_do_not_leak", APIURL: "https://ghe.example.com/api/v3/"},
		"slack", config.Slack{WebhookURL: "https://hooks.slack.com/services/T000/B000/XXXX", Channel: "#updates"},
	)

	gt.String(t, buf.String()).NotContains("ghp_do_not_leak")
	gt.String(t, buf.String()).NotContains("hooks.slack.com")
	gt.String(t, buf.String()).Contains("ghe.example.com")
	gt.String(t, buf.String()).Contains("#updates")
}

func TestLogger_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := &config.Logger{Level: "debug"}

	result, err := logger.ConfigureWriter(&buf)
	gt.NoError(t, err)

	result.Debug("checking component", "slug", "my-plugin", "github", config.GitHub{Token: "ghp_do_not_leak"})
	gt.String(t, buf.String()).Contains("checking component")
	gt.String(t, buf.String()).Contains("my-plugin")
	gt.String(t, buf.String()).NotContains("ghp_do_not_leak")
}
