// Package web provides HTTP handlers and REST API endpoints for workflow editing.
package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dukex/trainflow/pkg/models"
	"github.com/dukex/trainflow/pkg/registry"
	"github.com/dukex/trainflow/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

var errInvalidJSON = errors.New("invalid JSON format")

type APIHandlers struct {
	workflowService *services.Workflow
	editorService   *services.Editor
	instanceService *services.Instance
	validator       *validator.Validate
	registry        *registry.Registry
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	editorService *services.Editor,
	instanceService *services.Instance,
	validator *validator.Validate,
	registry *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		workflowService: workflowService,
		editorService:   editorService,
		instanceService: instanceService,
		validator:       validator,
		registry:        registry,
	}
}

// bind decodes the JSON body into req and validates it. The returned error
// is meant for a validation problem detail.
func (h *APIHandlers) bind(c fiber.Ctx, req any) error {
	if err := c.Bind().JSON(req); err != nil {
		return errInvalidJSON
	}

	return h.validator.Struct(req)
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	req, err := h.parseListWorkflowsRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.workflowService.ListWorkflows(c.Context(), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":     result.Workflows,
		"total_count":   result.TotalCount,
		"has_next_page": result.HasNextPage,
		"pagination": fiber.Map{
			"limit":  req.Limit,
			"offset": req.Offset,
		},
		"sorting": fiber.Map{
			"sort_by":    req.SortBy,
			"sort_order": req.SortOrder,
		},
	})
}

// parseListWorkflowsRequest parses query parameters for listing workflows.
func (h *APIHandlers) parseListWorkflowsRequest(c fiber.Ctx) (*services.ListWorkflowsRequest, error) {
	req := &services.ListWorkflowsRequest{}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, err
		}

		req.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, err
		}

		req.Offset = offset
	}

	if categoryStr := c.Query("category"); categoryStr != "" {
		category := models.WorkflowCategory(categoryStr)
		req.Category = &category
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.WorkflowStatus(statusStr)
		req.Status = &status
	}

	req.SortBy = c.Query("sort_by")
	req.SortOrder = c.Query("sort_order")

	return req, nil
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	workflow, err := h.workflowService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	err := h.workflowService.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) SetWorkflowStatus(c fiber.Ctx) error {
	var req SetStatusRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow, err := h.workflowService.SetStatus(c.Context(), c.Params("id"), req.Status)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) ApplyWorkflow(c fiber.Ctx) error {
	var req ApplyWorkflowRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	instance, err := h.instanceService.ApplyToEntity(c.Context(), services.ApplyRequest{
		WorkflowID: c.Params("id"),
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(instance)
}

func (h *APIHandlers) GetWorkflowInstances(c fiber.Ctx) error {
	instances, err := h.instanceService.ListByWorkflow(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"instances":   instances,
		"total_count": len(instances),
	})
}

func (h *APIHandlers) GetInstance(c fiber.Ctx) error {
	instance, err := h.instanceService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(instance)
}

func (h *APIHandlers) EvaluateCondition(c fiber.Ctx) error {
	var req EvaluateConditionRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.workflowService.EvaluateCondition(c.Context(), c.Params("id"), c.Params("nodeId"), req.Record)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) GetCatalog(c fiber.Ctx) error {
	catalog := h.registry.Catalog()
	if catalog == nil {
		return c.JSON(fiber.Map{"entities": []any{}})
	}

	return c.JSON(fiber.Map{"entities": catalog.Entities()})
}

func (h *APIHandlers) GetNodeTypes(c fiber.Ctx) error {
	factories := h.registry.GetAvailableNodes()

	nodeTypes := make([]NodeTypeResponse, 0, len(factories))
	for _, factory := range factories {
		nodeTypes = append(nodeTypes, TransformNodeType(factory))
	}

	return c.JSON(fiber.Map{"node_types": nodeTypes})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryOk := len(h.registry.GetAvailableNodes()) > 0
	registryCheck := "Node registry is empty"

	if registryOk {
		registryCheck = "Node registry is loaded"
	}

	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Trainflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if registryOk && repOk {
		status = "healthy"
		message = "Trainflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
