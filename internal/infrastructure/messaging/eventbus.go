// Package messaging provides the in-process event bus that fans domain
// events out to UI-facing and logging subscribers.
package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lexiquest/progress-engine/internal/domain/shared"
)

// EventBus is a synchronous in-memory implementation of shared.EventBus.
// Handlers run on the publisher's goroutine; a failing handler is logged
// and never blocks delivery to the rest.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[shared.EventType][]shared.EventHandler
	global   []shared.EventHandler
	logger   *slog.Logger
}

// NewEventBus creates an empty bus.
func NewEventBus(logger *slog.Logger) *EventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventBus{
		handlers: make(map[shared.EventType][]shared.EventHandler),
		logger:   logger,
	}
}

// Subscribe registers a handler for one event type.
func (b *EventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeAll registers a handler for every event.
func (b *EventBus) SubscribeAll(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.global = append(b.global, handler)
}

// Publish dispatches the event to matching handlers. A handler panic is
// recovered so one bad subscriber can't take down the sync engine.
func (b *EventBus) Publish(ctx context.Context, event shared.Event) error {
	b.mu.RLock()
	handlers := append([]shared.EventHandler(nil), b.handlers[event.EventType()]...)
	handlers = append(handlers, b.global...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.dispatch(ctx, event, handler)
	}
	return nil
}

func (b *EventBus) dispatch(ctx context.Context, event shared.Event, handler shared.EventHandler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				slog.String("event_type", string(event.EventType())),
				slog.Any("panic", r),
			)
		}
	}()

	if err := handler(ctx, event); err != nil {
		b.logger.Warn("event handler failed",
			slog.String("event_type", string(event.EventType())),
			slog.String("error", fmt.Sprintf("%v", err)),
		)
	}
}
