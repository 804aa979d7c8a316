package web

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/medgate/medgate/pkg/checkpoint"
	"github.com/medgate/medgate/pkg/engine"
	"github.com/medgate/medgate/pkg/events"
	"github.com/medgate/medgate/pkg/models"
	"github.com/medgate/medgate/pkg/persistence"
	"github.com/medgate/medgate/pkg/registry"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500

	streamHeartbeat = 15 * time.Second
)

type APIHandlers struct {
	logger      *slog.Logger
	engine      *engine.Engine
	persistence persistence.Persistence
	checkpoints checkpoint.Store
	registry    *registry.Registry
	broker      *StreamBroker
	validator   *validator.Validate
}

func NewAPIHandlers(
	logger *slog.Logger,
	eng *engine.Engine,
	store persistence.Persistence,
	checkpoints checkpoint.Store,
	reg *registry.Registry,
	broker *StreamBroker,
) *APIHandlers {
	return &APIHandlers{
		logger:      logger.With("module", "api"),
		engine:      eng,
		persistence: store,
		checkpoints: checkpoints,
		registry:    reg,
		broker:      broker,
		validator:   validator.New(),
	}
}

// Register mounts every route on the app.
func (h *APIHandlers) Register(app *fiber.App) {
	app.Get("/health", h.HealthCheck)
	app.Post("/runs", h.CreateRun)
	app.Get("/runs", h.ListRuns)
	app.Get("/runs/:id", h.GetRun)
	app.Post("/runs/:id/decision", h.SubmitDecision)
	app.Get("/runs/:id/stream", h.StreamRun)
}

func (h *APIHandlers) CreateRun(c fiber.Ctx) error {
	var req CreateRunRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	run, err := h.engine.Start(c.Context(), req.URL, req.RequestedBy)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(run)
}

func (h *APIHandlers) ListRuns(c fiber.Ctx) error {
	limit := defaultListLimit

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			return badRequest(c, "limit must be a positive integer")
		}

		limit = parsed
	}

	if limit > maxListLimit {
		limit = maxListLimit
	}

	runs, err := h.persistence.Runs(c.Context(), limit)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"runs":  runs,
		"count": len(runs),
	})
}

func (h *APIHandlers) GetRun(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Run ID is required")
	}

	run, err := h.persistence.RunByID(c.Context(), id)
	if err != nil {
		if persistence.IsRunNotFound(err) {
			return notFound(c, "run not found")
		}

		return internalError(c, err)
	}

	return c.JSON(run)
}

func (h *APIHandlers) SubmitDecision(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Run ID is required")
	}

	var req DecisionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	run, err := h.engine.Resume(c.Context(), id, models.Decision(req.Decision), req.Feedback, req.ReviewedBy)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(run)
}

// StreamRun serves the run's lifecycle as server-sent events. The first event
// is always a snapshot of the current run state, so subscribers that connect
// late still see where the run stands; for a terminal run the snapshot is
// also the last event.
func (h *APIHandlers) StreamRun(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Run ID is required")
	}

	run, err := h.persistence.RunByID(c.Context(), id)
	if err != nil {
		if persistence.IsRunNotFound(err) {
			return notFound(c, "run not found")
		}

		return internalError(c, err)
	}

	// Subscribe before writing the snapshot so no event can fall into the
	// gap between the two.
	eventCh, cancel := h.broker.Subscribe(id)

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	terminal := run.Status.IsTerminal()

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer cancel()

		if err := writeSSE(w, "run.snapshot", run); err != nil {
			return
		}

		if terminal {
			return
		}

		heartbeat := time.NewTicker(streamHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case ev, ok := <-eventCh:
				if !ok {
					return
				}

				if err := writeSSE(w, string(ev.Type), ev.Event); err != nil {
					return
				}

				if ev.Type == events.RunExecutionFinishedEvent || ev.Type == events.RunExecutionFailedEvent {
					return
				}
			case <-heartbeat.C:
				if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
					return
				}

				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})
}

func writeSSE(w *bufio.Writer, eventName string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventName, data); err != nil {
		return err
	}

	return w.Flush()
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()

	persistenceErr := h.persistence.HealthCheck(c.Context())
	checkpointErr := h.checkpoints.HealthCheck(c.Context())

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && persistenceErr == nil && checkpointErr == nil {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"registry":    registryCheck,
			"persistence": healthMessage(persistenceErr),
			"checkpoints": healthMessage(checkpointErr),
		},
		"timestamp": time.Now().UTC(),
	})
}

func healthMessage(err error) string {
	if err != nil {
		return err.Error()
	}

	return "ok"
}
