package syncer

import (
	"time"

	"github.com/lexiquest/progress-engine/internal/domain/shared"
)

// StateChangedEvent fires on every sync state transition.
type StateChangedEvent struct {
	shared.BaseEvent
	From string `json:"from"`
	To   string `json:"to"`
}

// NewStateChangedEvent creates a StateChangedEvent.
func NewStateChangedEvent(userID string, from, to State, at time.Time) StateChangedEvent {
	return StateChangedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventSyncStateChanged, userID, at),
		From:      from.String(),
		To:        to.String(),
	}
}

// SyncCompletedEvent fires after a reconciliation pass reaches the remote
// state.
type SyncCompletedEvent struct {
	shared.BaseEvent
	Pushed   int           `json:"pushed"`
	Duration time.Duration `json:"duration"`
}

// NewSyncCompletedEvent creates a SyncCompletedEvent.
func NewSyncCompletedEvent(userID string, pushed int, duration time.Duration, at time.Time) SyncCompletedEvent {
	return SyncCompletedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventSyncCompleted, userID, at),
		Pushed:    pushed,
		Duration:  duration,
	}
}

// AuthRequiredEvent fires when the server rejects the session; the app must
// re-authenticate before syncing can resume. Queued mutations are kept.
type AuthRequiredEvent struct {
	shared.BaseEvent
}

// NewAuthRequiredEvent creates an AuthRequiredEvent.
func NewAuthRequiredEvent(userID string, at time.Time) AuthRequiredEvent {
	return AuthRequiredEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventAuthRequired, userID, at),
	}
}

// MutationDiscardedEvent fires when a queued mutation is dropped because the
// server definitively rejected it. The local progress it produced stays.
type MutationDiscardedEvent struct {
	shared.BaseEvent
	MutationID string `json:"mutation_id"`
	Kind       string `json:"kind"`
	Reason     string `json:"reason"`
}

// NewMutationDiscardedEvent creates a MutationDiscardedEvent.
func NewMutationDiscardedEvent(userID, mutationID, kind, reason string, at time.Time) MutationDiscardedEvent {
	return MutationDiscardedEvent{
		BaseEvent:  shared.NewBaseEvent(shared.EventMutationDiscarded, userID, at),
		MutationID: mutationID,
		Kind:       kind,
		Reason:     reason,
	}
}
