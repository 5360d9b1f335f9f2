package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/trainflow/pkg/models"
	"github.com/dukex/trainflow/pkg/persistence"
	"github.com/google/uuid"
)

// WorkflowRepository handles workflow-related database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

const workflowColumns = `
			id
		  , name
		  , description
		  , category
		  , status
		  , nodes
		  , edges
		  , created_at
		  , updated_at`

// ListWorkflows returns one filtered and sorted page of workflows with the total match count.
func (r *WorkflowRepository) ListWorkflows(ctx context.Context, opts persistence.ListWorkflowsOptions) (*persistence.WorkflowListResult, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}

	where, args := listFilter(opts)

	var totalCount int64

	err = r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM workflows"+where, args...).Scan(&totalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count workflows: %w", err)
	}

	// SortBy and SortOrder are checked against the allowlist by Normalize.
	query := fmt.Sprintf(
		"SELECT %s FROM workflows%s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d",
		workflowColumns, where, opts.SortBy, strings.ToUpper(opts.SortOrder), len(args)+1, len(args)+2,
	)

	rows, err := r.db.QueryContext(ctx, query, append(args, opts.Limit, opts.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func(ctx context.Context, r *WorkflowRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	workflows := make([]*models.Workflow, 0, opts.Limit)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return &persistence.WorkflowListResult{
		Workflows:   workflows,
		TotalCount:  totalCount,
		HasNextPage: int64(opts.Offset+len(workflows)) < totalCount,
	}, nil
}

func listFilter(opts persistence.ListWorkflowsOptions) (string, []any) {
	conditions := make([]string, 0, 2)
	args := make([]any, 0, 4)

	if opts.Category != nil {
		args = append(args, string(*opts.Category))
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}

	if opts.Status != nil {
		args = append(args, string(*opts.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

// GetByID retrieves a workflow by its ID.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	if uuid.Validate(id) != nil {
		return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
	}

	row := r.db.QueryRowContext(ctx, "SELECT"+workflowColumns+" FROM workflows WHERE id = $1", id)

	workflow, err := scanWorkflow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	return workflow, nil
}

// Save inserts or replaces a workflow together with its graph.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()

	if workflow.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate workflow id: %w", err)
		}

		workflow.ID = id.String()
	}

	if uuid.Validate(workflow.ID) != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, errors.New("ID must be a UUID"))
	}

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	nodes := workflow.Nodes
	if nodes == nil {
		nodes = make([]*models.WorkflowNode, 0)
	}

	edges := workflow.Edges
	if edges == nil {
		edges = make([]*models.WorkflowEdge, 0)
	}

	nodesJSON, err := json.Marshal(nodes)
	if err != nil {
		return fmt.Errorf("failed to marshal nodes: %w", err)
	}

	edgesJSON, err := json.Marshal(edges)
	if err != nil {
		return fmt.Errorf("failed to marshal edges: %w", err)
	}

	query := `
		INSERT INTO workflows (id, name, description, category, status, nodes, edges, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			status = EXCLUDED.status,
			nodes = EXCLUDED.nodes,
			edges = EXCLUDED.edges,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`

	err = r.db.QueryRowContext(ctx, query,
		workflow.ID,
		workflow.Name,
		workflow.Description,
		string(workflow.Category),
		string(workflow.Status),
		nodesJSON,
		edgesJSON,
		workflow.CreatedAt,
		workflow.UpdatedAt,
	).Scan(&workflow.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}

	workflow.CreatedAt = workflow.CreatedAt.UTC()

	return nil
}

// Delete removes a workflow; its instances go with it through ON DELETE CASCADE.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read deleted rows: %w", err)
	}

	if affected == 0 {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row scanner) (*models.Workflow, error) {
	var (
		workflow             models.Workflow
		category, status     string
		nodesJSON, edgesJSON []byte
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.Name,
		&workflow.Description,
		&category,
		&status,
		&nodesJSON,
		&edgesJSON,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	workflow.Category = models.WorkflowCategory(category)
	workflow.Status = models.WorkflowStatus(status)
	workflow.CreatedAt = workflow.CreatedAt.UTC()
	workflow.UpdatedAt = workflow.UpdatedAt.UTC()

	err = json.Unmarshal(nodesJSON, &workflow.Nodes)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal nodes of workflow %s: %w", workflow.ID, err)
	}

	err = json.Unmarshal(edgesJSON, &workflow.Edges)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal edges of workflow %s: %w", workflow.ID, err)
	}

	return &workflow, nil
}
