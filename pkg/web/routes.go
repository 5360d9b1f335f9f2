package web

import "github.com/gofiber/fiber/v3"

// Register mounts the workflow, session and palette endpoints on router.
func (h *APIHandlers) Register(router fiber.Router) {
	w := router.Group("/workflows")
	w.Get("/", h.GetWorkflows)
	w.Get("/:id", h.GetWorkflow)
	w.Delete("/:id", h.DeleteWorkflow)
	w.Patch("/:id/status", h.SetWorkflowStatus)
	w.Post("/:id/apply", h.ApplyWorkflow)
	w.Get("/:id/instances", h.GetWorkflowInstances)
	w.Post("/:id/sessions", h.StartSessionFromWorkflow)
	w.Post("/:id/nodes/:nodeId/evaluate", h.EvaluateCondition)

	router.Get("/instances/:id", h.GetInstance)

	s := router.Group("/sessions")
	s.Post("/", h.StartSession)
	s.Get("/:id", h.GetSession)
	s.Patch("/:id", h.UpdateSession)
	s.Delete("/:id", h.DeleteSession)
	s.Get("/:id/readiness", h.GetSessionReadiness)
	s.Post("/:id/save", h.SaveSession)

	// Graph editing
	s.Post("/:id/nodes", h.AddNode)
	s.Patch("/:id/nodes/:nodeId", h.UpdateNode)
	s.Delete("/:id/nodes/:nodeId", h.DeleteNode)
	s.Post("/:id/nodes/:nodeId/duplicate", h.DuplicateNode)
	s.Put("/:id/nodes/:nodeId/position", h.MoveNode)
	s.Post("/:id/edges", h.Connect)
	s.Delete("/:id/edges/:edgeId", h.DeleteEdge)

	router.Get("/catalog", h.GetCatalog)
	router.Get("/node-types", h.GetNodeTypes)
	router.Get("/health", h.HealthCheck)
}
