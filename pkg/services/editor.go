package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dukex/trainflow/pkg/graph"
	"github.com/dukex/trainflow/pkg/metrics"
	"github.com/dukex/trainflow/pkg/models"
	"github.com/dukex/trainflow/pkg/otelhelper"
	"github.com/dukex/trainflow/pkg/registry"
	"github.com/dukex/trainflow/pkg/sessions"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Editor runs editing sessions: each operation loads the session graph, applies
// one graph mutation and stores the result atomically.
type Editor struct {
	options

	store     sessions.Store
	workflows *Workflow
	registry  *registry.Registry
	now       func() time.Time
}

// NewEditor creates a new editor service.
func NewEditor(store sessions.Store, workflows *Workflow, reg *registry.Registry, opts ...Option) *Editor {
	return &Editor{
		options:   newOptions("editor_service", opts),
		store:     store,
		workflows: workflows,
		registry:  reg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// StartSessionRequest describes a session for a new workflow.
type StartSessionRequest struct {
	Name        string
	Description string
	Category    models.WorkflowCategory
}

// StartSession opens a session on an empty graph. The category defaults to
// training_request.
func (e *Editor) StartSession(ctx context.Context, req StartSessionRequest) (*sessions.Session, error) {
	if req.Category == "" {
		req.Category = models.CategoryTrainingRequest
	}

	if !req.Category.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, req.Category)
	}

	now := e.now()
	session := &sessions.Session{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Status:      models.WorkflowStatusDraft,
		Graph:       graph.New(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := e.store.Create(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to create editing session: %w", err)
	}

	metrics.RecordSessionStarted("new")
	e.logger.InfoContext(ctx, "Started editing session", "session_id", session.ID)

	return session, nil
}

// StartSessionFromWorkflow opens a session on a copy of a stored workflow.
func (e *Editor) StartSessionFromWorkflow(ctx context.Context, workflowID string) (*sessions.Session, error) {
	workflow, err := e.workflows.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	g, err := graph.FromWorkflow(workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow graph: %w", err)
	}

	now := e.now()
	session := &sessions.Session{
		ID:          uuid.NewString(),
		WorkflowID:  workflow.ID,
		Name:        workflow.Name,
		Description: workflow.Description,
		Category:    workflow.Category,
		Status:      workflow.Status,
		Graph:       g,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = e.store.Create(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to create editing session: %w", err)
	}

	metrics.RecordSessionStarted("existing")
	e.logger.InfoContext(ctx, "Started editing session", "session_id", session.ID, "workflow_id", workflow.ID)

	return session, nil
}

// GetSession returns a session.
func (e *Editor) GetSession(ctx context.Context, sessionID string) (*sessions.Session, error) {
	return e.store.Get(ctx, sessionID)
}

// DeleteSession discards a session and its unsaved changes.
func (e *Editor) DeleteSession(ctx context.Context, sessionID string) error {
	return e.store.Delete(ctx, sessionID)
}

// UpdateDetailsRequest changes the workflow metadata of a session. Nil fields
// are left untouched.
type UpdateDetailsRequest struct {
	Name        *string
	Description *string
	Category    *models.WorkflowCategory
}

// UpdateDetails changes the name, description or category of the session.
func (e *Editor) UpdateDetails(ctx context.Context, sessionID string, req UpdateDetailsRequest) (*sessions.Session, error) {
	if req.Category != nil && !req.Category.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, *req.Category)
	}

	return e.store.Update(ctx, sessionID, func(session *sessions.Session) error {
		if req.Name != nil {
			session.Name = strings.TrimSpace(*req.Name)
		}

		if req.Description != nil {
			session.Description = *req.Description
		}

		if req.Category != nil {
			session.Category = *req.Category
		}

		session.UpdatedAt = e.now()

		return nil
	})
}

// AddNode adds a node of the given type to the session graph.
func (e *Editor) AddNode(ctx context.Context, sessionID string, nodeType models.NodeType) (*models.WorkflowNode, error) {
	var node *models.WorkflowNode

	err := e.mutate(ctx, "AddNode", sessionID, func(g *graph.Graph) error {
		var err error

		node, err = g.AddNode(nodeType)

		return err
	})

	return node, err
}

// Connect adds an edge. An empty label lets condition nodes pick the free branch.
func (e *Editor) Connect(ctx context.Context, sessionID, sourceID, targetID, label string) (*models.WorkflowEdge, error) {
	var edge *models.WorkflowEdge

	err := e.mutate(ctx, "Connect", sessionID, func(g *graph.Graph) error {
		var err error

		edge, err = g.ConnectLabeled(sourceID, targetID, label)

		return err
	})

	return edge, err
}

// DeleteNode removes a node and the edges touching it.
func (e *Editor) DeleteNode(ctx context.Context, sessionID, nodeID string) error {
	return e.mutate(ctx, "DeleteNode", sessionID, func(g *graph.Graph) error {
		return g.DeleteNode(nodeID)
	})
}

// DeleteEdge removes one edge.
func (e *Editor) DeleteEdge(ctx context.Context, sessionID, edgeID string) error {
	return e.mutate(ctx, "DeleteEdge", sessionID, func(g *graph.Graph) error {
		return g.DeleteEdge(edgeID)
	})
}

// DuplicateNode copies a node next to the original without its edges.
func (e *Editor) DuplicateNode(ctx context.Context, sessionID, nodeID string) (*models.WorkflowNode, error) {
	var node *models.WorkflowNode

	err := e.mutate(ctx, "DuplicateNode", sessionID, func(g *graph.Graph) error {
		var err error

		node, err = g.DuplicateNode(nodeID)

		return err
	})

	return node, err
}

// MoveNode sets the canvas position of a node.
func (e *Editor) MoveNode(ctx context.Context, sessionID, nodeID string, position models.Position) (*models.WorkflowNode, error) {
	var node *models.WorkflowNode

	err := e.mutate(ctx, "MoveNode", sessionID, func(g *graph.Graph) error {
		var err error

		node, err = g.MoveNode(nodeID, position)

		return err
	})

	return node, err
}

// UpdateNodeData merges a patch into a node's data. The merged data is validated
// against the node type schema and the catalog before it is applied.
func (e *Editor) UpdateNodeData(ctx context.Context, sessionID, nodeID string, patch map[string]any) (*models.WorkflowNode, error) {
	var node *models.WorkflowNode

	err := e.mutate(ctx, "UpdateNodeData", sessionID, func(g *graph.Graph) error {
		current := g.Node(nodeID)
		if current != nil && e.registry != nil {
			merged, err := graph.MergedDataMap(current, patch)
			if err != nil {
				return err
			}

			err = e.registry.Validate(current.Type, merged)
			if err != nil {
				var validationErr *registry.ValidationError
				if errors.As(err, &validationErr) {
					validationErr.NodeID = nodeID
				}

				return err
			}
		}

		var err error

		node, err = g.UpdateNodeData(nodeID, patch)

		return err
	})

	return node, err
}

// Readiness returns the save checklist of the session.
func (e *Editor) Readiness(ctx context.Context, sessionID string) (ReadinessReport, error) {
	session, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return ReadinessReport{}, err
	}

	workflow := session.Workflow()

	return NewReadinessReport(workflow.Name, workflow.Nodes, workflow.Edges), nil
}

// Save writes the session back as a workflow: a new workflow on the first save,
// an update of the same workflow afterwards. The session is kept open.
func (e *Editor) Save(ctx context.Context, sessionID string) (*models.Workflow, error) {
	const op = "Save"

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "editor.save",
		attribute.String(otelhelper.SessionIDKey, sessionID),
	)
	defer span.End()

	session, err := e.store.Get(ctx, sessionID)
	if err != nil {
		recordError(span, err)

		return nil, err
	}

	workflow := session.Workflow()

	report := NewReadinessReport(workflow.Name, workflow.Nodes, workflow.Edges)
	if !report.CanSave {
		err := &NotReadyError{Op: op, Readiness: report}
		recordError(span, err)

		return nil, err
	}

	if session.WorkflowID != "" {
		// Status only changes through SetStatus; the stored one is kept.
		workflow.Status = ""

		saved, err := e.workflows.update(ctx, session.WorkflowID, workflow, sessionID)
		if err != nil {
			recordError(span, err)

			return nil, err
		}

		return saved, nil
	}

	saved, err := e.workflows.create(ctx, workflow, sessionID)
	if err != nil {
		recordError(span, err)

		return nil, err
	}

	// The workflow is stored at this point; a failure below only leaves the
	// session unaware of it.
	_, err = e.store.Update(ctx, sessionID, func(session *sessions.Session) error {
		session.WorkflowID = saved.ID
		session.UpdatedAt = e.now()

		return nil
	})
	if err != nil {
		recordError(span, err)

		return nil, fmt.Errorf("workflow %s saved but session not updated: %w", saved.ID, err)
	}

	return saved, nil
}

// mutate runs one graph operation inside an atomic session update and records it.
func (e *Editor) mutate(ctx context.Context, op, sessionID string, fn func(g *graph.Graph) error) error {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "editor."+op,
		attribute.String(otelhelper.SessionIDKey, sessionID),
	)
	defer span.End()

	_, err := e.store.Update(ctx, sessionID, func(session *sessions.Session) error {
		if session.Graph == nil {
			session.Graph = graph.New()
		}

		session.Graph.SetPositioner(e.positioner)

		err := fn(session.Graph)
		if err != nil {
			return err
		}

		session.UpdatedAt = e.now()

		return nil
	})

	metrics.RecordGraphOperation(op, metrics.Result(err, IsRejected))

	if err != nil {
		recordError(span, err)
		e.logger.DebugContext(ctx, "Graph operation rejected", "op", op, "session_id", sessionID, "error", err)

		return err
	}

	return nil
}
