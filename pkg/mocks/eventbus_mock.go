package mocks

import (
	"context"

	"github.com/dukex/trainflow/pkg/eventbus"
	"github.com/stretchr/testify/mock"
)

// MockPublisher is a mock implementation of eventbus.EventPublisher interface.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event eventbus.Event) error {
	args := m.Called(ctx, event)

	return args.Error(0)
}
