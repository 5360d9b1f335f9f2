package web

import (
	"github.com/dukex/trainflow/pkg/models"
	"github.com/dukex/trainflow/pkg/services"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) StartSession(c fiber.Ctx) error {
	var req StartSessionRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	session, err := h.editorService.StartSession(c.Context(), services.StartSessionRequest{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *APIHandlers) StartSessionFromWorkflow(c fiber.Ctx) error {
	session, err := h.editorService.StartSessionFromWorkflow(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *APIHandlers) GetSession(c fiber.Ctx) error {
	session, err := h.editorService.GetSession(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(session)
}

func (h *APIHandlers) DeleteSession(c fiber.Ctx) error {
	err := h.editorService.DeleteSession(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) UpdateSession(c fiber.Ctx) error {
	var req UpdateSessionRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	session, err := h.editorService.UpdateDetails(c.Context(), c.Params("id"), services.UpdateDetailsRequest{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(session)
}

func (h *APIHandlers) GetSessionReadiness(c fiber.Ctx) error {
	report, err := h.editorService.Readiness(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(NewReadinessResponse(report))
}

func (h *APIHandlers) SaveSession(c fiber.Ctx) error {
	workflow, err := h.editorService.Save(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) AddNode(c fiber.Ctx) error {
	var req AddNodeRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	node, err := h.editorService.AddNode(c.Context(), c.Params("id"), req.Type)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(node)
}

func (h *APIHandlers) UpdateNode(c fiber.Ctx) error {
	var req UpdateNodeRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	node, err := h.editorService.UpdateNodeData(c.Context(), c.Params("id"), c.Params("nodeId"), req.Data)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(node)
}

func (h *APIHandlers) DeleteNode(c fiber.Ctx) error {
	err := h.editorService.DeleteNode(c.Context(), c.Params("id"), c.Params("nodeId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) DuplicateNode(c fiber.Ctx) error {
	node, err := h.editorService.DuplicateNode(c.Context(), c.Params("id"), c.Params("nodeId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(node)
}

func (h *APIHandlers) MoveNode(c fiber.Ctx) error {
	var req MoveNodeRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	node, err := h.editorService.MoveNode(c.Context(), c.Params("id"), c.Params("nodeId"), models.Position{
		X: *req.X,
		Y: *req.Y,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(node)
}

func (h *APIHandlers) Connect(c fiber.Ctx) error {
	var req ConnectRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	edge, err := h.editorService.Connect(c.Context(), c.Params("id"), req.Source, req.Target, req.Label)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(edge)
}

func (h *APIHandlers) DeleteEdge(c fiber.Ctx) error {
	err := h.editorService.DeleteEdge(c.Context(), c.Params("id"), c.Params("edgeId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
