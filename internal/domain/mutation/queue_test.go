package mutation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexiquest/progress-engine/internal/domain/shared"
	"github.com/lexiquest/progress-engine/pkg/errclass"
	"github.com/lexiquest/progress-engine/pkg/retry"
)

// memStore is an in-memory Store for queue tests; the sqlite implementation
// has its own coverage.
type memStore struct {
	mu      sync.Mutex
	items   []Mutation
	nextSeq int64
}

func (s *memStore) Append(ctx context.Context, m Mutation) (Mutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	m.Seq = s.nextSeq
	s.items = append(s.items, m)
	return m, nil
}

func (s *memStore) List(ctx context.Context) ([]Mutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Mutation(nil), s.items...), nil
}

func (s *memStore) Head(ctx context.Context) (Mutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return Mutation{}, shared.ErrNotFound
	}
	return s.items[0], nil
}

func (s *memStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.items {
		if m.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (s *memStore) Len(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items), nil
}

func enqueueXP(t *testing.T, q *Queue, amount int) Mutation {
	t.Helper()
	m, err := New("u1", KindAddXP, AddXPPayload{Amount: amount}, time.Now())
	require.NoError(t, err)
	stored, err := q.Enqueue(context.Background(), m)
	require.NoError(t, err)
	return stored
}

func TestEnqueue_AssignsIncreasingSequence(t *testing.T) {
	q := NewQueue(&memStore{}, nil)

	first := enqueueXP(t, q, 10)
	second := enqueueXP(t, q, 20)
	third := enqueueXP(t, q, 30)

	assert.Less(t, first.Seq, second.Seq)
	assert.Less(t, second.Seq, third.Seq)
}

func TestEnqueue_RejectsInvalid(t *testing.T) {
	q := NewQueue(&memStore{}, nil)

	_, err := q.Enqueue(context.Background(), Mutation{Kind: KindAddXP})
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)
}

func TestDrain_DeliversInEnqueueOrder(t *testing.T) {
	q := NewQueue(&memStore{}, nil)
	for _, amount := range []int{10, 20, 30} {
		enqueueXP(t, q, amount)
	}

	var delivered []int
	err := q.Drain(context.Background(), func(ctx context.Context, m Mutation) error {
		payload, err := DecodePayload[AddXPPayload](m)
		require.NoError(t, err)
		delivered = append(delivered, payload.Amount)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30}, delivered)

	depth, err := q.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, depth)
}

func TestDrain_RetryableFailureLeavesHeadInPlace(t *testing.T) {
	q := NewQueue(&memStore{}, nil)
	first := enqueueXP(t, q, 10)
	enqueueXP(t, q, 20)

	err := q.Drain(context.Background(), func(ctx context.Context, m Mutation) error {
		return &errclass.StatusError{StatusCode: 503}
	})
	require.Error(t, err)

	depth, _ := q.Len(context.Background())
	assert.Equal(t, 2, depth, "nothing removed on an indefinite failure")

	// The stalled item is the next one delivered on the following pass.
	var next Mutation
	_ = q.Drain(context.Background(), func(ctx context.Context, m Mutation) error {
		next = m
		return &errclass.StatusError{StatusCode: 503}
	})
	assert.Equal(t, first.ID, next.ID)
}

func TestDrain_AuthFailureLeavesQueueIntact(t *testing.T) {
	q := NewQueue(&memStore{}, nil)
	enqueueXP(t, q, 10)

	err := q.Drain(context.Background(), func(ctx context.Context, m Mutation) error {
		return &errclass.StatusError{StatusCode: 401}
	})
	require.Error(t, err)

	depth, _ := q.Len(context.Background())
	assert.Equal(t, 1, depth, "auth failures must not discard queued progress")
}

func TestDrain_RetryableMarkLeavesQueueIntact(t *testing.T) {
	q := NewQueue(&memStore{}, nil)
	enqueueXP(t, q, 10)

	breakerOpen := errors.New("push_mutation: circuit breaker is open")
	err := q.Drain(context.Background(), func(ctx context.Context, m Mutation) error {
		return retry.Retryable(breakerOpen)
	})
	require.Error(t, err)

	depth, _ := q.Len(context.Background())
	assert.Equal(t, 1, depth)
}

func TestDrain_PermanentFailureDiscardsAndContinues(t *testing.T) {
	q := NewQueue(&memStore{}, nil)
	enqueueXP(t, q, 10)
	enqueueXP(t, q, 20)

	var delivered []int
	err := q.Drain(context.Background(), func(ctx context.Context, m Mutation) error {
		payload, _ := DecodePayload[AddXPPayload](m)
		delivered = append(delivered, payload.Amount)
		if payload.Amount == 10 {
			return &errclass.StatusError{StatusCode: 400}
		}
		return nil
	})

	require.NoError(t, err, "a definitely-invalid item is skipped, not fatal")
	assert.Equal(t, []int{10, 20}, delivered)

	depth, _ := q.Len(context.Background())
	assert.Equal(t, 0, depth)
}

func TestDrain_EmptyQueueIsNoop(t *testing.T) {
	q := NewQueue(&memStore{}, nil)

	calls := 0
	err := q.Drain(context.Background(), func(ctx context.Context, m Mutation) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 0, calls)
}

func TestDrain_ContextCancellation(t *testing.T) {
	q := NewQueue(&memStore{}, nil)
	enqueueXP(t, q, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := q.Drain(ctx, func(ctx context.Context, m Mutation) error {
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	depth, _ := q.Len(context.Background())
	assert.Equal(t, 1, depth)
}
