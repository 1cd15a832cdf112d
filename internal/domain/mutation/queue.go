package mutation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lexiquest/progress-engine/pkg/errclass"
	"github.com/lexiquest/progress-engine/pkg/logger"
	"github.com/lexiquest/progress-engine/pkg/retry"
)

// Store is the durability boundary for the queue. Append must persist
// before returning so an application restart never loses queued work, and
// Seq assignment must be strictly increasing across restarts.
type Store interface {
	// Append persists the mutation and returns it with Seq assigned.
	Append(ctx context.Context, m Mutation) (Mutation, error)

	// List returns all queued mutations in Seq order.
	List(ctx context.Context) ([]Mutation, error)

	// Head returns the oldest queued mutation, or shared.ErrNotFound when
	// the queue is empty.
	Head(ctx context.Context) (Mutation, error)

	// Remove deletes a mutation by id.
	Remove(ctx context.Context, id string) error

	// Len returns the number of queued mutations.
	Len(ctx context.Context) (int, error)
}

// Queue is the durable, ordered, append-only sequence of offline mutations.
// It guarantees at-least-once delivery: an item is removed only after its
// handler reports definite success or definite (non-retryable) failure, so
// a drain interrupted by a transient error resumes at the same head.
type Queue struct {
	store  Store
	logger *slog.Logger
}

// NewQueue creates a queue over a durable store.
func NewQueue(store Store, log *slog.Logger) *Queue {
	if log == nil {
		log = slog.Default()
	}
	return &Queue{
		store:  store,
		logger: log.With(logger.Component("mutation_queue")),
	}
}

// Enqueue validates and durably appends a mutation, returning it with its
// assigned sequence number.
func (q *Queue) Enqueue(ctx context.Context, m Mutation) (Mutation, error) {
	if err := m.Validate(); err != nil {
		return Mutation{}, err
	}
	stored, err := q.store.Append(ctx, m)
	if err != nil {
		return Mutation{}, fmt.Errorf("enqueue %s: %w", m.Kind, err)
	}
	q.logger.Debug("mutation enqueued",
		logger.MutationID(stored.ID),
		logger.MutationKind(string(stored.Kind)),
		logger.Sequence(stored.Seq),
	)
	return stored, nil
}

// Len returns the queue depth.
func (q *Queue) Len(ctx context.Context) (int, error) {
	return q.store.Len(ctx)
}

// List returns the queued mutations in delivery order.
func (q *Queue) List(ctx context.Context) ([]Mutation, error) {
	return q.store.List(ctx)
}

// Handler processes one mutation during a drain pass.
type Handler func(ctx context.Context, m Mutation) error

// Drain delivers queued mutations to the handler strictly in enqueue order.
//
// Per-item outcome:
//   - nil: definite success, the item is removed and draining continues.
//   - definitely-invalid failure (client / parsing / unknown per errclass):
//     the item can never succeed unmodified, so it is removed and logged as
//     discarded, and draining continues. The corresponding progress stays
//     recorded locally; the missed remote mirror is an accepted,
//     documented inconsistency rather than data loss.
//   - indefinite failure (network / timeout / server, an auth failure, or
//     anything wrapped retry.Retryable, e.g. a breaker-open short circuit):
//     the item stays at the head and Drain returns the error, so the next
//     pass resumes without reordering.
func (q *Queue) Drain(ctx context.Context, handler Handler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		items, err := q.store.List(ctx)
		if err != nil {
			return fmt.Errorf("drain: %w", err)
		}
		if len(items) == 0 {
			return nil
		}

		head := items[0]
		if err := handler(ctx, head); err != nil {
			if KeepQueued(err) {
				return fmt.Errorf("drain stalled at seq %d: %w", head.Seq, err)
			}

			q.logger.Warn("discarding permanently failed mutation",
				logger.MutationID(head.ID),
				logger.MutationKind(string(head.Kind)),
				logger.Sequence(head.Seq),
				logger.ErrorKind(errclass.KindOf(err).String()),
				logger.Err(err),
			)
		}

		if err := q.store.Remove(ctx, head.ID); err != nil {
			return fmt.Errorf("drain remove seq %d: %w", head.Seq, err)
		}
	}
}

// KeepQueued reports whether a delivery failure leaves the mutation queued
// for a later pass. Retryable transport failures obviously stay; auth
// failures stay too, because the mutation will succeed once the session is
// re-authenticated; an explicit retry.Retryable mark stays so callers can
// flag conditions (like an open circuit breaker) that errclass cannot see.
func KeepQueued(err error) bool {
	return retry.IsRetryableMark(err) ||
		errclass.IsAuth(err) ||
		errclass.IsRetryable(err)
}
