package mocks

import (
	"context"

	"github.com/dukex/trainflow/pkg/models"
	"github.com/dukex/trainflow/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock

	Workflows *MockWorkflowRepository
	Instances *MockInstanceRepository
}

// NewMockPersistence creates a mock persistence with empty repository mocks.
func NewMockPersistence() *MockPersistence {
	return &MockPersistence{
		Workflows: &MockWorkflowRepository{},
		Instances: &MockInstanceRepository{},
	}
}

func (m *MockPersistence) WorkflowRepository() persistence.WorkflowRepository {
	return m.Workflows
}

func (m *MockPersistence) InstanceRepository() persistence.InstanceRepository {
	return m.Instances
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// MockWorkflowRepository is a mock implementation of persistence.WorkflowRepository interface.
type MockWorkflowRepository struct {
	mock.Mock
}

func (m *MockWorkflowRepository) ListWorkflows(ctx context.Context, opts persistence.ListWorkflowsOptions) (*persistence.WorkflowListResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*persistence.WorkflowListResult), args.Error(1)
}

func (m *MockWorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Workflow), args.Error(1)
}

func (m *MockWorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	args := m.Called(ctx, workflow)

	return args.Error(0)
}

func (m *MockWorkflowRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockInstanceRepository is a mock implementation of persistence.InstanceRepository interface.
type MockInstanceRepository struct {
	mock.Mock
}

func (m *MockInstanceRepository) Create(ctx context.Context, instance *models.WorkflowInstance) error {
	args := m.Called(ctx, instance)

	return args.Error(0)
}

func (m *MockInstanceRepository) GetByID(ctx context.Context, id string) (*models.WorkflowInstance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.WorkflowInstance), args.Error(1)
}

func (m *MockInstanceRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.WorkflowInstance, error) {
	args := m.Called(ctx, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.WorkflowInstance), args.Error(1)
}
