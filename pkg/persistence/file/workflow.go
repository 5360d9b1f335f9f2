package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dukex/trainflow/pkg/models"
	"github.com/dukex/trainflow/pkg/persistence"
)

// WorkflowRepository handles workflow-related file operations. It shares its
// lock with the InstanceRepository of the same Persistence; Delete also removes
// the workflow's instances.
type WorkflowRepository struct {
	root string // File system root for storing workflows
	mu   *sync.RWMutex
}

func (wr *WorkflowRepository) dir() string {
	return filepath.Join(wr.root, "workflows")
}

// ListWorkflows returns paginated and filtered workflows with in-memory operations.
func (wr *WorkflowRepository) ListWorkflows(_ context.Context, opts persistence.ListWorkflowsOptions) (*persistence.WorkflowListResult, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}

	wr.mu.RLock()
	defer wr.mu.RUnlock()

	jsonFiles, err := fs.Glob(os.DirFS(wr.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	filtered := make([]*models.Workflow, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		workflowID := strings.TrimSuffix(file, ".json")

		workflow, err := wr.read(workflowID)
		if err != nil {
			if errors.Is(err, persistence.ErrWorkflowNotFound) {
				continue
			}

			return nil, err
		}

		if opts.Matches(workflow) {
			filtered = append(filtered, workflow)
		}
	}

	sortWorkflows(filtered, opts.SortBy, opts.SortOrder)

	totalCount := int64(len(filtered))

	if opts.Offset >= len(filtered) {
		return &persistence.WorkflowListResult{
			Workflows:  make([]*models.Workflow, 0),
			TotalCount: totalCount,
		}, nil
	}

	endIdx := min(opts.Offset+opts.Limit, len(filtered))

	return &persistence.WorkflowListResult{
		Workflows:   filtered[opts.Offset:endIdx],
		TotalCount:  totalCount,
		HasNextPage: endIdx < len(filtered),
	}, nil
}

// sortWorkflows sorts workflows in-place based on the specified field and order.
// Ties are broken by id so pages are stable.
func sortWorkflows(workflows []*models.Workflow, sortBy, sortOrder string) {
	sort.SliceStable(workflows, func(i, j int) bool {
		a, b := workflows[i], workflows[j]
		if sortOrder == persistence.SortOrderDesc {
			a, b = b, a
		}

		switch sortBy {
		case persistence.SortByUpdatedAt:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.Before(b.UpdatedAt)
			}
		case persistence.SortByName:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}

		return a.ID < b.ID
	})
}

// GetByID retrieves a workflow by its ID from the file system.
func (wr *WorkflowRepository) GetByID(_ context.Context, workflowID string) (*models.Workflow, error) {
	if err := validateID(workflowID); err != nil {
		return nil, persistence.NewWorkflowError("GetByID", workflowID, persistence.ErrWorkflowNotFound)
	}

	wr.mu.RLock()
	defer wr.mu.RUnlock()

	return wr.read(workflowID)
}

func (wr *WorkflowRepository) read(workflowID string) (*models.Workflow, error) {
	body, err := os.ReadFile(filepath.Join(wr.dir(), workflowID+".json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewWorkflowError("GetByID", workflowID, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to fetch workflow %s: %w", workflowID, err)
	}

	var workflow models.Workflow

	err = json.Unmarshal(body, &workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %s: %w", workflowID, err)
	}

	return &workflow, nil
}

// Save saves a workflow to the file system.
func (wr *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	if err := validateID(workflow.ID); err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	wr.mu.Lock()
	defer wr.mu.Unlock()

	err := os.MkdirAll(wr.dir(), 0750)
	if err != nil {
		return fmt.Errorf("failed to create workflows directory: %w", err)
	}

	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workflow %s: %w", workflow.ID, err)
	}

	return writeFileAtomic(filepath.Join(wr.dir(), workflow.ID+".json"), data)
}

// Delete removes a workflow and the instances created from it.
func (wr *WorkflowRepository) Delete(_ context.Context, id string) error {
	if err := validateID(id); err != nil {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	wr.mu.Lock()
	defer wr.mu.Unlock()

	err := os.Remove(filepath.Join(wr.dir(), id+".json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
		}

		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	instances, err := readInstances(wr.root)
	if err != nil {
		return err
	}

	for _, instance := range instances {
		if instance.WorkflowID != id {
			continue
		}

		err = os.Remove(instancePath(wr.root, instance.ID))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete instance %s of workflow %s: %w", instance.ID, id, err)
		}
	}

	return nil
}

// writeFileAtomic writes to a temporary file and renames it over the target so
// readers never see a partial document.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	err = os.Chmod(tmp.Name(), 0600)
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}

	if err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
