package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexiquest/progress-engine/pkg/errclass"
)

func TestDefaultDelaySchedule(t *testing.T) {
	r := New()

	assert.Equal(t, 500*time.Millisecond, r.DelayFor(1))
	assert.Equal(t, 1000*time.Millisecond, r.DelayFor(2))
	assert.Equal(t, 2000*time.Millisecond, r.DelayFor(3))
}

func TestDelayCappedAtMax(t *testing.T) {
	r := New(WithInitialDelay(4*time.Second), WithMaxDelay(10*time.Second))

	assert.Equal(t, 4*time.Second, r.DelayFor(1))
	assert.Equal(t, 8*time.Second, r.DelayFor(2))
	assert.Equal(t, 10*time.Second, r.DelayFor(3))
	assert.Equal(t, 10*time.Second, r.DelayFor(7))
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesServerErrorsThenSucceeds(t *testing.T) {
	calls := 0
	r := New(WithInitialDelay(time.Millisecond))

	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &errclass.StatusError{StatusCode: 503}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustionReturnsLastError(t *testing.T) {
	calls := 0
	r := New(WithMaxAttempts(3), WithInitialDelay(time.Millisecond))

	lastErr := &errclass.StatusError{StatusCode: 500}
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return lastErr
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	var statusErr *errclass.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 500, statusErr.StatusCode)
}

func TestDo_ClientErrorFailsFast(t *testing.T) {
	calls := 0
	r := New(WithInitialDelay(time.Millisecond))

	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return &errclass.StatusError{StatusCode: 400}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "client errors must not consume the retry budget")
}

func TestDo_PermanentMarkOverridesClassification(t *testing.T) {
	calls := 0
	r := New(WithInitialDelay(time.Millisecond))

	inner := errors.New("give up")
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Permanent(inner)
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, inner, err)
}

func TestDo_NestedPermanentMarkUnwrapsToCause(t *testing.T) {
	calls := 0
	r := New(WithMaxAttempts(3), WithInitialDelay(time.Millisecond))

	cause := errors.New("rejected payload")
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return fmt.Errorf("push: %w", Permanent(cause))
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsPermanent(err), "the mark must not survive into the returned error")
}

func TestDo_RetryableMarkOverridesClassification(t *testing.T) {
	calls := 0
	r := New(WithMaxAttempts(2), WithInitialDelay(time.Millisecond))

	// An unknown error is not retryable by classification, but the explicit
	// mark forces a second attempt.
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Retryable(errors.New("flaky"))
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "flaky", err.Error())
}

func TestDo_RetryIfOverride(t *testing.T) {
	calls := 0
	r := New(
		WithMaxAttempts(2),
		WithInitialDelay(time.Millisecond),
		WithRetryIf(func(error) bool { return true }),
	)

	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("anything retries")
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_ContextCancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	r := New(WithMaxAttempts(5), WithInitialDelay(50*time.Millisecond))

	err := r.Do(ctx, func(ctx context.Context) error {
		calls++
		cancel()
		return &errclass.StatusError{StatusCode: 502}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_OnRetryCallback(t *testing.T) {
	var delays []time.Duration
	r := New(
		WithMaxAttempts(3),
		WithInitialDelay(time.Millisecond),
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			delays = append(delays, delay)
		}),
	)

	_ = r.Do(context.Background(), func(ctx context.Context) error {
		return &errclass.StatusError{StatusCode: 500}
	})

	// Two retries happen for three attempts.
	require.Len(t, delays, 2)
	assert.Equal(t, time.Millisecond, delays[0])
	assert.Equal(t, 2*time.Millisecond, delays[1])
}

func TestDoWithData(t *testing.T) {
	calls := 0
	got, err := DoWithData(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		if calls < 2 {
			return 0, &errclass.StatusError{StatusCode: 500}
		}
		return 42, nil
	}, WithInitialDelay(time.Millisecond))

	require.NoError(t, err)
	assert.Equal(t, 42, got)
}
