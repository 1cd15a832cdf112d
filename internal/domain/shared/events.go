package shared

import (
	"context"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened to a user's gamification state or to the sync engine itself.
const (
	// Progress events
	EventXPGained            EventType = "progress.xp_gained"
	EventLevelUp             EventType = "progress.level_up"
	EventLessonCompleted     EventType = "progress.lesson_completed"
	EventStreakExtended      EventType = "progress.streak_extended"
	EventStreakReset         EventType = "progress.streak_reset"
	EventAchievementUnlocked EventType = "progress.achievement_unlocked"
	EventChallengeCompleted  EventType = "progress.challenge_completed"

	// Sync events
	EventSyncStateChanged  EventType = "sync.state_changed"
	EventSyncCompleted     EventType = "sync.completed"
	EventMutationDiscarded EventType = "sync.mutation_discarded"
	EventAuthRequired      EventType = "sync.auth_required"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string
}

// BaseEvent provides common event functionality. Concrete events embed it.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
}

// NewBaseEvent creates a base event stamped with the given time.
func NewBaseEvent(eventType EventType, aggregateID string, at time.Time) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   at,
		AggregateId: aggregateID,
	}
}

func (e BaseEvent) EventType() EventType  { return e.Type }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) AggregateID() string   { return e.AggregateId }

// EventHandler processes a single domain event.
type EventHandler func(ctx context.Context, event Event) error

// EventBus distributes domain events to subscribed handlers.
type EventBus interface {
	// Publish delivers the event to all handlers subscribed to its type.
	Publish(ctx context.Context, event Event) error

	// Subscribe registers a handler for a specific event type.
	Subscribe(eventType EventType, handler EventHandler)

	// SubscribeAll registers a handler for every event type.
	SubscribeAll(handler EventHandler)
}
