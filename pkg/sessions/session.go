// Package sessions stores editing sessions: the working copy of a workflow graph
// a user edits until it is saved.
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/dukex/trainflow/pkg/graph"
	"github.com/dukex/trainflow/pkg/models"
)

var (
	ErrSessionNotFound = errors.New("editing session not found")
	ErrSessionExists   = errors.New("editing session already exists")
	ErrConcurrentEdit  = errors.New("editing session changed concurrently")
)

// DefaultTTL is how long an untouched session is kept.
const DefaultTTL = 2 * time.Hour

// Session is one user's working copy of a workflow.
// WorkflowID is empty until the session is saved for the first time.
type Session struct {
	ID          string                  `json:"id"`
	WorkflowID  string                  `json:"workflow_id,omitempty"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Category    models.WorkflowCategory `json:"category"`
	Status      models.WorkflowStatus   `json:"status"`
	Graph       *graph.Graph            `json:"graph"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// Workflow builds the workflow definition the session would save.
func (s *Session) Workflow() *models.Workflow {
	workflow := &models.Workflow{
		ID:          s.WorkflowID,
		Name:        s.Name,
		Description: s.Description,
		Category:    s.Category,
		Status:      s.Status,
		Nodes:       make([]*models.WorkflowNode, 0),
		Edges:       make([]*models.WorkflowEdge, 0),
	}

	if s.Graph != nil {
		workflow.Nodes = s.Graph.Nodes
		workflow.Edges = s.Graph.Edges
	}

	return workflow
}

// Readiness returns the checklist of the session graph.
func (s *Session) Readiness() graph.Readiness {
	if s.Graph == nil {
		return graph.Check(nil, nil)
	}

	return s.Graph.Readiness()
}

// CanSave reports whether the session may be saved.
func (s *Session) CanSave() bool {
	if s.Graph == nil {
		return false
	}

	return s.Graph.CanSave(s.Name)
}

// UpdateFunc mutates a session in place. Returning an error discards the change.
type UpdateFunc func(session *Session) error

// Store keeps editing sessions between requests.
type Store interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	// Update applies fn to the stored session atomically and returns the result.
	Update(ctx context.Context, id string, fn UpdateFunc) (*Session, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
