package main

import (
	"context"
	"os"

	"github.com/medgate/medgate/pkg/cmd"
	"github.com/medgate/medgate/pkg/log"
	"github.com/medgate/medgate/pkg/otelhelper"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
)

const defaultPort = 8080

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "medgate-api",
		Usage:                 "Submit, review and stream content validation runs",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
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
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing",
				Sources: cli.EnvVars("OTEL_ENABLED"),
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

			logger.InfoContext(ctx, "Initializing Medgate API")

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

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			var tracer trace.Tracer

			if command.Bool("tracing") {
				tracer, err = otelhelper.NewTracer(ctx, "medgate-api")
				if err != nil {
					return err
				}
			}

			registry := cmd.NewRegistry(logger, nil)

			api := NewAPI(logger, persistence, checkpoints, registry, eventBus, tracer)

			return api.Start(ctx, command.Int("port"))
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
