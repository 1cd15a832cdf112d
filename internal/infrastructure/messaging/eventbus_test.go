package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexiquest/progress-engine/internal/domain/shared"
)

type testEvent struct {
	shared.BaseEvent
}

func newTestEvent(eventType shared.EventType) testEvent {
	return testEvent{BaseEvent: shared.NewBaseEvent(eventType, "u1", time.Now())}
}

func TestPublish_RoutesByType(t *testing.T) {
	bus := NewEventBus(nil)

	var xp, level int
	bus.Subscribe(shared.EventXPGained, func(ctx context.Context, e shared.Event) error {
		xp++
		return nil
	})
	bus.Subscribe(shared.EventLevelUp, func(ctx context.Context, e shared.Event) error {
		level++
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), newTestEvent(shared.EventXPGained)))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent(shared.EventXPGained)))

	assert.Equal(t, 2, xp)
	assert.Equal(t, 0, level)
}

func TestPublish_GlobalSubscriberSeesEverything(t *testing.T) {
	bus := NewEventBus(nil)

	var seen []shared.EventType
	bus.SubscribeAll(func(ctx context.Context, e shared.Event) error {
		seen = append(seen, e.EventType())
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), newTestEvent(shared.EventXPGained)))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent(shared.EventSyncCompleted)))

	assert.Equal(t, []shared.EventType{shared.EventXPGained, shared.EventSyncCompleted}, seen)
}

func TestPublish_HandlerFailureDoesNotStopDelivery(t *testing.T) {
	bus := NewEventBus(nil)

	delivered := false
	bus.Subscribe(shared.EventXPGained, func(ctx context.Context, e shared.Event) error {
		return errors.New("subscriber broke")
	})
	bus.Subscribe(shared.EventXPGained, func(ctx context.Context, e shared.Event) error {
		delivered = true
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), newTestEvent(shared.EventXPGained)))
	assert.True(t, delivered)
}

func TestPublish_HandlerPanicIsContained(t *testing.T) {
	bus := NewEventBus(nil)

	bus.Subscribe(shared.EventXPGained, func(ctx context.Context, e shared.Event) error {
		panic("subscriber bug")
	})

	assert.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newTestEvent(shared.EventXPGained))
	})
}
