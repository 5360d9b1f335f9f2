package web

import (
	"errors"

	"github.com/dukex/trainflow/pkg/graph"
	"github.com/dukex/trainflow/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

// notReadyProblem carries the save checklist next to the problem fields.
type notReadyProblem struct {
	*problems.Problem

	Readiness services.ReadinessReport `json:"readiness"`
	Missing   []string                 `json:"missing"`
}

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, problemType, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType(problemType).
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

// handleServiceError maps service, graph and persistence errors to problems.
func handleServiceError(c fiber.Ctx, err error) error {
	var notReady *services.NotReadyError

	switch {
	case errors.As(err, &notReady):
		problem := notReadyProblem{
			Problem: problems.NewStatusProblem(409).
				WithInstance(c.Path()).
				WithType("workflow_not_ready").
				WithDetail(err.Error()),
			Readiness: notReady.Readiness,
			Missing:   notReady.Readiness.Missing(),
		}

		return c.Status(fiber.StatusConflict).JSON(problem)

	case errors.Is(err, services.ErrSessionNotFound):
		return notFound(c, "session_not_found", "session not found or expired")

	case errors.Is(err, services.ErrWorkflowNotFound):
		return notFound(c, "workflow_not_found", "workflow not found")

	case errors.Is(err, services.ErrInstanceNotFound):
		return notFound(c, "instance_not_found", "workflow instance not found")

	case errors.Is(err, services.ErrNodeNotFound):
		return notFound(c, "node_not_found", err.Error())

	case errors.Is(err, services.ErrEdgeNotFound):
		return notFound(c, "edge_not_found", err.Error())

	case services.IsValidationError(err):
		return badRequest(c, err.Error())

	case graph.IsRuleViolation(err):
		return conflict(c, "graph_rule_violation", err.Error())

	case services.IsConflictError(err):
		return conflict(c, "conflict", err.Error())

	default:
		return internalError(c, err)
	}
}
