package eventbus_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/trainflow/pkg/channels/gochannel"
	"github.com/dukex/trainflow/pkg/eventbus"
	"github.com/dukex/trainflow/pkg/events"
	"github.com/dukex/trainflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(slog.Default(), pub, sub)

	t.Cleanup(func() {
		assert.NoError(t, bus.Close())
	})

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	bus := newTestBus(t)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	received := make(chan *events.WorkflowSaved, 1)

	require.NoError(t, bus.Handle(events.WorkflowSavedEvent, func(_ context.Context, event any) error {
		saved, ok := event.(*events.WorkflowSaved)
		if !ok {
			return errors.New("unexpected event type")
		}

		received <- saved

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	err := bus.Publish(ctx, &events.WorkflowSaved{
		BaseEvent: events.NewBaseEvent(events.WorkflowSavedEvent, "wf-1"),
		Name:      "Manager approval",
		Category:  models.CategoryTrainingRequest,
		Status:    models.WorkflowStatusDraft,
		Created:   true,
		NodeCount: 3,
		EdgeCount: 2,
	})
	require.NoError(t, err)

	select {
	case saved := <-received:
		assert.Equal(t, "wf-1", saved.WorkflowID)
		assert.Equal(t, "Manager approval", saved.Name)
		assert.True(t, saved.Created)
		assert.Equal(t, 3, saved.NodeCount)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWatermillEventBus_UnhandledEventsAreSkipped(t *testing.T) {
	bus := newTestBus(t)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	applied := make(chan *events.WorkflowApplied, 1)

	require.NoError(t, bus.Handle(events.WorkflowAppliedEvent, func(_ context.Context, event any) error {
		applied <- event.(*events.WorkflowApplied)

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, &events.WorkflowDeleted{
		BaseEvent: events.NewBaseEvent(events.WorkflowDeletedEvent, "wf-1"),
	}))
	require.NoError(t, bus.Publish(ctx, &events.WorkflowApplied{
		BaseEvent:  events.NewBaseEvent(events.WorkflowAppliedEvent, "wf-1"),
		InstanceID: "inst-1",
		EntityType: "training_requests",
		EntityID:   "42",
	}))

	select {
	case event := <-applied:
		assert.Equal(t, "inst-1", event.InstanceID)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWatermillEventBus_KeysMessagesByWorkflow(t *testing.T) {
	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(slog.Default(), pub, sub)

	t.Cleanup(func() {
		assert.NoError(t, bus.Close())
	})

	messages, err := sub.Subscribe(t.Context(), events.Topic)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(t.Context(), &events.WorkflowDeleted{
		BaseEvent: events.NewBaseEvent(events.WorkflowDeletedEvent, "wf-9"),
	}))

	select {
	case msg := <-messages:
		assert.Equal(t, "wf-9", msg.Metadata.Get(events.EventMetadataKey))
		assert.Equal(t, string(events.WorkflowDeletedEvent), msg.Metadata.Get(events.EventTypeMetadataKey))
		assert.NotEmpty(t, msg.UUID)
		msg.Ack()
	case <-time.After(5 * time.Second):
		t.Fatal("message was not published")
	}
}
