package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tagship/pkg/cli/config"
	controller "github.com/m-mizutani/tagship/pkg/controller/http"
	slackinfra "github.com/m-mizutani/tagship/pkg/infra/slack"
	"github.com/m-mizutani/tagship/pkg/usecase"
)

func cmdServe() *cli.Command {
	var (
		serverCfg config.Server
		githubCfg config.GitHub
		slackCfg  config.Slack
		buildCfg  config.Build
	)

	flags := append(serverCfg.Flags(), githubCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, buildCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the webhook trigger server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting trigger server",
				slog.String("addr", serverCfg.Addr),
				slog.String("repository", githubCfg.Owner+"/"+githubCfg.Repo),
			)

			matrix, err := loadMatrix(&buildCfg, githubCfg.Repo)
			if err != nil {
				return err
			}

			builder, err := buildCfg.NewBuilder()
			if err != nil {
				return err
			}

			publisher, err := githubCfg.NewClient()
			if err != nil {
				return err
			}

			notifier, err := slackinfra.NewNotifier(slackCfg.WebhookURL)
			if err != nil {
				return err
			}

			jobHook, runHook := usecase.NotificationHooks(notifier)
			pipeline := usecase.NewPipeline(builder, publisher,
				usecase.WithJobHook(jobHook),
				usecase.WithRunHook(runHook),
			)
			webhookUC := usecase.NewWebhook(pipeline, matrix)

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				webhookUC,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(serverCfg.WebhookSecret),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
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
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
