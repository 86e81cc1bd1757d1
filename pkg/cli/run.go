package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tagship/pkg/cli/config"
	"github.com/m-mizutani/tagship/pkg/domain/model"
	slackinfra "github.com/m-mizutani/tagship/pkg/infra/slack"
	"github.com/m-mizutani/tagship/pkg/usecase"
)

func cmdRun() *cli.Command {
	var (
		githubCfg config.GitHub
		slackCfg  config.Slack
		buildCfg  config.Build
		tag       string
	)

	flags := append(githubCfg.Flags(), slackCfg.Flags()...)
	flags = append(flags, buildCfg.Flags()...)
	flags = append(flags, &cli.StringFlag{
		Name:        "tag",
		Usage:       "Release tag to build and publish",
		Required:    true,
		Destination: &tag,
		Sources:     cli.EnvVars("TAGSHIP_TAG"),
	})

	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Run one release pipeline for a tag",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

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

			trigger := model.NewTrigger(tag)
			logger.Info("Starting release",
				"tag", trigger.Tag,
				"run_id", trigger.RunID,
				"repository", githubCfg.Owner+"/"+githubCfg.Repo,
			)

			summary, err := pipeline.Run(ctx, trigger, matrix)
			if err != nil {
				captureError(err)
				return err
			}

			printSummary(summary)

			if summary.Outcome() == model.OutcomeFailure {
				err := goerr.Wrap(summary.Err(), "release run failed",
					goerr.V("tag", trigger.Tag),
				)
				captureError(err)
				return err
			}

			return nil
		},
	}
}

// loadMatrix reads the matrix file when one is given, otherwise falls back
// to the built-in matrix named after the repository's binary.
func loadMatrix(cfg *config.Build, binary string) (model.Matrix, error) {
	if cfg.MatrixPath == "" {
		return model.DefaultMatrix(binary), nil
	}
	return model.LoadMatrix(cfg.MatrixPath)
}

func captureError(err error) {
	if sentry.CurrentHub().Client() != nil {
		sentry.CaptureException(err)
	}
}

func printSummary(summary *model.RunSummary) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Printf("\nRelease %s (%s)\n", summary.Trigger.Tag, summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))
	for _, r := range summary.Results {
		mark := green("published")
		if r.Outcome != model.OutcomeSuccess {
			mark = red(string(r.State))
		}
		fmt.Printf("  %-48s %s\n", r.Entry.Name(), mark)
	}

	if summary.Outcome() == model.OutcomeSuccess {
		fmt.Printf("Result: %s\n", green("success"))
	} else {
		fmt.Printf("Result: %s\n", red("failure"))
	}
}
