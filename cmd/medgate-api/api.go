// Package main provides the Medgate API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/medgate/medgate/pkg/checkpoint"
	"github.com/medgate/medgate/pkg/dispatch"
	"github.com/medgate/medgate/pkg/engine"
	"github.com/medgate/medgate/pkg/eventbus"
	"github.com/medgate/medgate/pkg/fetch"
	"github.com/medgate/medgate/pkg/persistence"
	"github.com/medgate/medgate/pkg/registry"
	"github.com/medgate/medgate/pkg/routing"
	"github.com/medgate/medgate/pkg/synthesis"
	"github.com/medgate/medgate/pkg/web"
	"go.opentelemetry.io/otel/trace"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	checkpoints checkpoint.Store
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
}

func NewAPI(
	logger *slog.Logger,
	store persistence.Persistence,
	checkpoints checkpoint.Store,
	reg *registry.Registry,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
) *API {
	return &API{
		logger:      logger,
		persistence: store,
		checkpoints: checkpoints,
		registry:    reg,
		eventBus:    eventBus,
		tracer:      tracer,
	}
}

func (a *API) App(ctx context.Context) (*fiber.App, error) {
	router, err := routing.NewRouter(routing.DefaultRules())
	if err != nil {
		return nil, err
	}

	eng := engine.NewEngine(engine.Config{
		Logger:      a.logger,
		Persistence: a.persistence,
		Checkpoints: a.checkpoints,
		Registry:    a.registry,
		Router:      router,
		Dispatcher:  dispatch.NewDispatcher(dispatch.DefaultTaskTimeout),
		Fetcher:     fetch.NewFetcher(a.logger),
		Synthesizer: synthesis.NewSynthesizer(),
		EventBus:    a.eventBus,
		Tracer:      a.tracer,
	})

	broker := web.NewStreamBroker(a.logger)
	if err := broker.Attach(ctx, a.eventBus); err != nil {
		return nil, err
	}

	handlers := web.NewAPIHandlers(a.logger, eng, a.persistence, a.checkpoints, a.registry, broker)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Medgate API")
	})

	handlers.Register(app)

	return app, nil
}

func (a *API) Start(ctx context.Context, port int) error {
	app, err := a.App(ctx)
	if err != nil {
		return err
	}

	return app.Listen(":" + strconv.Itoa(port))
}
