package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/trainflow/pkg/models"
	"github.com/dukex/trainflow/pkg/persistence"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// InstanceRepository handles workflow_instances rows.
type InstanceRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewInstanceRepository creates a new instance repository.
func NewInstanceRepository(db *sql.DB, logger *slog.Logger) *InstanceRepository {
	return &InstanceRepository{db: db, logger: logger}
}

// Create inserts a new instance row.
func (r *InstanceRepository) Create(ctx context.Context, instance *models.WorkflowInstance) error {
	if uuid.Validate(instance.ID) != nil {
		return persistence.NewInstanceError("Create", instance.ID, errors.New("ID must be a UUID"))
	}

	if instance.CreatedAt.IsZero() {
		instance.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workflow_instances (id, workflow_id, status, entity_type, entity_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		instance.ID,
		instance.WorkflowID,
		string(instance.Status),
		instance.EntityType,
		instance.EntityID,
		instance.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return persistence.NewInstanceError("Create", instance.ID, persistence.ErrInstanceAlreadyExists)
		}

		return fmt.Errorf("failed to create workflow instance: %w", err)
	}

	return nil
}

// GetByID retrieves an instance by its ID.
func (r *InstanceRepository) GetByID(ctx context.Context, id string) (*models.WorkflowInstance, error) {
	if uuid.Validate(id) != nil {
		return nil, persistence.NewInstanceError("GetByID", id, persistence.ErrInstanceNotFound)
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, workflow_id, status, entity_type, entity_id, created_at
		FROM workflow_instances
		WHERE id = $1`, id)

	instance, err := scanInstance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewInstanceError("GetByID", id, persistence.ErrInstanceNotFound)
		}

		return nil, fmt.Errorf("failed to scan workflow instance: %w", err)
	}

	return instance, nil
}

// ListByWorkflow returns the instances of a workflow, newest first.
func (r *InstanceRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.WorkflowInstance, error) {
	instances := make([]*models.WorkflowInstance, 0)

	if uuid.Validate(workflowID) != nil {
		return instances, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, workflow_id, status, entity_type, entity_id, created_at
		FROM workflow_instances
		WHERE workflow_id = $1
		ORDER BY created_at DESC, id ASC`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow instances: %w", err)
	}

	defer func(ctx context.Context, r *InstanceRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	for rows.Next() {
		instance, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow instance: %w", err)
		}

		instances = append(instances, instance)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflow instances: %w", err)
	}

	return instances, nil
}

func scanInstance(row scanner) (*models.WorkflowInstance, error) {
	var (
		instance models.WorkflowInstance
		status   string
	)

	err := row.Scan(
		&instance.ID,
		&instance.WorkflowID,
		&status,
		&instance.EntityType,
		&instance.EntityID,
		&instance.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	instance.Status = models.InstanceStatus(status)
	instance.CreatedAt = instance.CreatedAt.UTC()

	return &instance, nil
}
