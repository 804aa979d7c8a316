package main

import (
	"context"
	"os"

	"github.com/medgate/medgate/pkg/cmd"
	"github.com/medgate/medgate/pkg/log"
	"github.com/robfig/cron/v3"
	cli "github.com/urfave/cli/v3"
)

const defaultSweepLimit = 500

func main() {
	logger := log.WithModule("janitor")

	command := &cli.Command{
		Name:                  "medgate-janitor",
		Usage:                 "Remove checkpoints of runs that already finished",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Run store URL (file://<dir> or postgres://...)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "checkpoint-url",
				Usage:   "Checkpoint store URL (memory://, file://<dir>, redis://... or postgres://...)",
				Value:   "memory://",
				Sources: cli.EnvVars("CHECKPOINT_URL"),
			},
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Cron schedule for the sweep",
				Value:   "@every 10m",
				Sources: cli.EnvVars("JANITOR_SCHEDULE"),
			},
			&cli.IntFlag{
				Name:    "sweep-limit",
				Usage:   "Maximum number of recent runs inspected per sweep",
				Value:   defaultSweepLimit,
				Sources: cli.EnvVars("JANITOR_SWEEP_LIMIT"),
			},
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Run a single sweep and exit",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close run store", "error", err)
				}
			}()

			checkpoints, err := cmd.NewCheckpointStore(ctx, logger, command.String("checkpoint-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := checkpoints.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close checkpoint store", "error", err)
				}
			}()

			janitor := NewJanitor(logger, persistence, checkpoints, command.Int("sweep-limit"))

			sweep := func() {
				removed, err := janitor.Sweep(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Sweep failed", "error", err)

					return
				}

				logger.InfoContext(ctx, "Sweep completed", "removed", removed)
			}

			if command.Bool("once") {
				sweep()

				return nil
			}

			scheduler := cron.New()

			if _, err := scheduler.AddFunc(command.String("schedule"), sweep); err != nil {
				return err
			}

			logger.InfoContext(ctx, "Starting janitor", "schedule", command.String("schedule"))

			scheduler.Run()

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
