// Package file provides file-based persistence for workflows and workflow instances.
package file

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/dukex/trainflow/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root         string
	workflowRepo *WorkflowRepository
	instanceRepo *InstanceRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) persistence.Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)
	mu := &sync.RWMutex{}

	return &Persistence{
		root:         cleanRoot,
		workflowRepo: &WorkflowRepository{root: cleanRoot, mu: mu},
		instanceRepo: &InstanceRepository{root: cleanRoot, mu: mu},
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); errors.Is(err, os.ErrNotExist) {
		return os.ErrNotExist
	}

	return nil
}

// WorkflowRepository returns the workflow repository implementation for file persistence.
func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

// InstanceRepository returns the instance repository implementation for file persistence.
func (fp *Persistence) InstanceRepository() persistence.InstanceRepository {
	return fp.instanceRepo
}

// validateID checks that an identifier is safe to use as a file name.
func validateID(id string) error {
	if id == "" {
		return errors.New("ID cannot be empty")
	}

	if strings.Contains(id, "..") || strings.ContainsAny(id, `/\`) {
		return errors.New("ID contains invalid characters")
	}

	return nil
}
