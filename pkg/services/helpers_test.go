package services

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/trainflow/pkg/catalog"
	"github.com/dukex/trainflow/pkg/channels/gochannel"
	"github.com/dukex/trainflow/pkg/eventbus"
	"github.com/dukex/trainflow/pkg/events"
	"github.com/dukex/trainflow/pkg/models"
	"github.com/dukex/trainflow/pkg/persistence"
	"github.com/dukex/trainflow/pkg/persistence/file"
	"github.com/dukex/trainflow/pkg/registry"
	"github.com/dukex/trainflow/pkg/sessions"
	"github.com/stretchr/testify/require"
)

// recordingPublisher keeps every published event in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event eventbus.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)

	return nil
}

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]events.EventType, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.GetType())
	}

	return types
}

func (p *recordingPublisher) last() eventbus.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.events) == 0 {
		return nil
	}

	return p.events[len(p.events)-1]
}

type testServices struct {
	persistence persistence.Persistence
	store       *sessions.MemoryStore
	publisher   *recordingPublisher
	workflows   *Workflow
	editor      *Editor
	instances   *Instance
}

func fixedPosition() models.Position {
	return models.Position{X: 100, Y: 200}
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	entities := catalog.Default()

	reg := registry.NewRegistry(logger, entities)
	reg.RegisterDefaultNodes()

	store, err := sessions.NewMemoryStore(logger)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	p := file.NewPersistence(t.TempDir())
	publisher := &recordingPublisher{}

	opts := []Option{WithLogger(logger), WithPublisher(publisher), WithPositioner(fixedPosition)}
	workflows := NewWorkflow(p, reg, opts...)

	return &testServices{
		persistence: p,
		store:       store,
		publisher:   publisher,
		workflows:   workflows,
		editor:      NewEditor(store, workflows, reg, opts...),
		instances:   NewInstance(p, workflows, entities, opts...),
	}
}

// newBusPublisher returns a gochannel event bus and a channel receiving every
// event of the given types.
func newBusPublisher(t *testing.T, types ...events.EventType) (eventbus.EventBus, <-chan any) {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(slog.New(slog.DiscardHandler), pub, sub)
	received := make(chan any, 16)

	for _, eventType := range types {
		require.NoError(t, bus.Handle(eventType, func(_ context.Context, event any) error {
			received <- event

			return nil
		}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Subscribe(ctx))

	t.Cleanup(func() {
		cancel()
		require.NoError(t, bus.Close())
	})

	return bus, received
}

func waitForEvent(t *testing.T, received <-chan any) any {
	t.Helper()

	select {
	case event := <-received:
		return event
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")

		return nil
	}
}
