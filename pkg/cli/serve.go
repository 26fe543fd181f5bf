package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/updraft/pkg/cli/config"
	controller "github.com/m-mizutani/updraft/pkg/controller/http"
	"github.com/m-mizutani/updraft/pkg/controller/scheduler"
	"github.com/m-mizutani/updraft/pkg/domain/interfaces"
	"github.com/m-mizutani/updraft/pkg/infra/settings"
	"github.com/m-mizutani/updraft/pkg/usecase"
	"github.com/m-mizutani/updraft/pkg/utils/errutil"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		rtCfg       runtimeConfig
		serverCfg   config.Server
		schedCfg    config.Scheduler
		slackCfg    config.Slack
		settingsCfg config.Settings
	)

	var flags []cli.Flag
	flags = append(flags, serverCfg.Flags()...)
	flags = append(flags, rtCfg.Flags()...)
	flags = append(flags, schedCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, settingsCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server and periodic update checks",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting updraft server",
				slog.String("addr", serverCfg.Addr),
				slog.Any("github", rtCfg.github),
				slog.Any("slack", slackCfg),
				slog.Duration("check_interval", schedCfg.Interval),
			)

			// Webhook secret source
			var secrets interfaces.SecretProvider = settings.NewStatic(rtCfg.github.WebhookSecret)
			schedOpts := []scheduler.Option{scheduler.WithInterval(schedCfg.Interval)}
			if settingsCfg.Enabled() {
				store, err := settingsCfg.NewFirestore(ctx, rtCfg.github.WebhookSecret)
				if err != nil {
					return err
				}
				defer func() {
					if err := store.Close(); err != nil {
						errutil.Handle(ctx, "Failed to close settings store", err)
					}
				}()
				secrets = store
				schedOpts = append(schedOpts, scheduler.WithReloader(store))
			}

			sched := scheduler.New(schedOpts...)

			coordOpts := []usecase.CoordinatorOption{
				usecase.WithRefreshScheduler(sched),
				usecase.WithCheckConcurrency(schedCfg.Concurrency),
			}
			if notifier := slackCfg.Notifier(); notifier != nil {
				coordOpts = append(coordOpts, usecase.WithNotifier(notifier))
			}

			rtCfg.cache.FollowInterval(schedCfg.Interval)
			rt, err := newRuntime(ctx, &rtCfg, coordOpts...)
			if err != nil {
				return err
			}

			// Create use cases
			webhookUC := usecase.NewWebhook(rt.coordinator)

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				webhookUC,
				rt.coordinator,
				controller.WithAddr(serverCfg.Addr),
				controller.WithReadHeaderTimeout(serverCfg.ReadHeaderTimeout),
				controller.WithSecretProvider(secrets),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			if err := sched.Start(ctx, rt.coordinator); err != nil {
				return err
			}
			defer sched.Stop()

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errutil.Handle(ctx, "HTTP server error", err)
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), serverCfg.ShutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
