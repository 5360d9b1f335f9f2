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
	"sync"
	"time"

	"github.com/dukex/trainflow/pkg/models"
	"github.com/dukex/trainflow/pkg/persistence"
)

// InstanceRepository handles workflow instance file operations.
type InstanceRepository struct {
	root string
	mu   *sync.RWMutex
}

func instancePath(root, id string) string {
	return filepath.Join(root, "instances", id+".json")
}

// Create stores a new instance. Instances are never rewritten by this service.
func (ir *InstanceRepository) Create(_ context.Context, instance *models.WorkflowInstance) error {
	if err := validateID(instance.ID); err != nil {
		return persistence.NewInstanceError("Create", instance.ID, err)
	}

	ir.mu.Lock()
	defer ir.mu.Unlock()

	err := os.MkdirAll(filepath.Join(ir.root, "instances"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create instances directory: %w", err)
	}

	path := instancePath(ir.root, instance.ID)
	if _, err := os.Stat(path); err == nil {
		return persistence.NewInstanceError("Create", instance.ID, persistence.ErrInstanceAlreadyExists)
	}

	if instance.CreatedAt.IsZero() {
		instance.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(instance)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow instance %s: %w", instance.ID, err)
	}

	return writeFileAtomic(path, data)
}

// GetByID retrieves an instance by its ID.
func (ir *InstanceRepository) GetByID(_ context.Context, id string) (*models.WorkflowInstance, error) {
	if err := validateID(id); err != nil {
		return nil, persistence.NewInstanceError("GetByID", id, persistence.ErrInstanceNotFound)
	}

	ir.mu.RLock()
	defer ir.mu.RUnlock()

	return readInstance(instancePath(ir.root, id), id)
}

// ListByWorkflow returns the instances of a workflow, newest first.
func (ir *InstanceRepository) ListByWorkflow(_ context.Context, workflowID string) ([]*models.WorkflowInstance, error) {
	ir.mu.RLock()
	defer ir.mu.RUnlock()

	all, err := readInstances(ir.root)
	if err != nil {
		return nil, err
	}

	instances := make([]*models.WorkflowInstance, 0)

	for _, instance := range all {
		if instance.WorkflowID == workflowID {
			instances = append(instances, instance)
		}
	}

	sort.SliceStable(instances, func(i, j int) bool {
		if !instances[i].CreatedAt.Equal(instances[j].CreatedAt) {
			return instances[i].CreatedAt.After(instances[j].CreatedAt)
		}

		return instances[i].ID < instances[j].ID
	})

	return instances, nil
}

func readInstances(root string) ([]*models.WorkflowInstance, error) {
	dir := filepath.Join(root, "instances")

	jsonFiles, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list instance files: %w", err)
	}

	instances := make([]*models.WorkflowInstance, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		instance, err := readInstance(filepath.Join(dir, file), file)
		if err != nil {
			if errors.Is(err, persistence.ErrInstanceNotFound) {
				continue
			}

			return nil, err
		}

		instances = append(instances, instance)
	}

	return instances, nil
}

func readInstance(path, id string) (*models.WorkflowInstance, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewInstanceError("GetByID", id, persistence.ErrInstanceNotFound)
		}

		return nil, fmt.Errorf("failed to fetch workflow instance %s: %w", id, err)
	}

	var instance models.WorkflowInstance

	err = json.Unmarshal(body, &instance)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow instance %s: %w", id, err)
	}

	return &instance, nil
}
