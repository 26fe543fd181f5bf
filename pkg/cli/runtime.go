package cli

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/updraft/pkg/cli/config"
	"github.com/m-mizutani/updraft/pkg/domain/interfaces"
	"github.com/m-mizutani/updraft/pkg/domain/model"
	"github.com/m-mizutani/updraft/pkg/domain/types"
	"github.com/m-mizutani/updraft/pkg/infra/fs"
	"github.com/m-mizutani/updraft/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// runtimeConfig holds the flags shared by commands that check components
type runtimeConfig struct {
	manifest config.Manifest
	github   config.GitHub
	cache    config.Cache
}

func (c *runtimeConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, c.manifest.Flags()...)
	flags = append(flags, c.github.Flags()...)
	flags = append(flags, c.cache.Flags()...)
	return flags
}

// runtime is the wired core shared by all commands
type runtime struct {
	registry    interfaces.RegistryClient
	coordinator *usecase.Coordinator
	installer   interfaces.InstallUseCase
}

// newRuntime loads the manifest and wires the core around it
func newRuntime(ctx context.Context, cfg *runtimeConfig, opts ...usecase.CoordinatorOption) (*runtime, error) {
	logger := ctxlog.From(ctx)

	components, err := cfg.manifest.Load()
	if err != nil {
		return nil, err
	}

	registry, err := cfg.github.NewClient()
	if err != nil {
		return nil, err
	}

	localFS := fs.NewLocal()
	fetcher := usecase.NewReleaseFetcher(registry, cfg.cache.New())

	opts = append([]usecase.CoordinatorOption{
		usecase.WithRelocator(usecase.NewRelocator(localFS)),
	}, opts...)
	coordinator := usecase.NewCoordinator(fetcher, opts...)

	tracked := coordinator.Track(ctx, components...)
	logger.Info("Components loaded",
		"manifest", cfg.manifest.Path,
		"declared", len(components),
		"tracked", tracked,
	)

	return &runtime{
		registry:    registry,
		coordinator: coordinator,
		installer:   usecase.NewInstall(registry, coordinator, localFS),
	}, nil
}

// component looks up a tracked component by slug
func (r *runtime) component(slug string) (model.Component, error) {
	comp, ok := r.coordinator.Component(slug)
	if !ok {
		return model.Component{}, goerr.New("component is not tracked",
			goerr.V("slug", slug),
			goerr.T(types.ErrTagNotFound))
	}
	return comp, nil
}
