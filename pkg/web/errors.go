package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/medgate/medgate/pkg/checkpoint"
	"github.com/medgate/medgate/pkg/engine"
	"github.com/medgate/medgate/pkg/persistence"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func conflict(c fiber.Ctx, problemType, detail string) error {
	problem := problems.NewStatusProblem(409).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(fiber.StatusConflict).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleEngineError maps typed engine and store errors onto problem
// responses.
func handleEngineError(c fiber.Ctx, err error) error {
	switch {
	case persistence.IsRunNotFound(err):
		return notFound(c, "run not found")

	case engine.IsNotAwaitingDecision(err):
		return conflict(c, "not_awaiting_decision", err.Error())

	case engine.IsAlreadyDecided(err):
		return conflict(c, "already_decided", err.Error())

	case engine.IsRunAlreadyActive(err):
		return conflict(c, "run_already_active", err.Error())

	case checkpoint.IsCheckpointNotFound(err):
		// The run claims to be suspended but its checkpoint is gone, which
		// happens when a volatile checkpoint store lost it across a restart.
		return conflict(c, "checkpoint_not_found", "run cannot be resumed: its checkpoint is missing")

	case errors.Is(err, engine.ErrInvalidDecision):
		return badRequest(c, err.Error())

	default:
		return internalError(c, err)
	}
}
