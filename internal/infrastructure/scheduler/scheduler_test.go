package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeEngine struct {
	depth      int
	reconciles int
	rollovers  int
	sweeps     int
}

func (f *fakeEngine) TriggerReconcile(ctx context.Context) error {
	f.reconciles++
	return nil
}

func (f *fakeEngine) RolloverDay(ctx context.Context) error {
	f.rollovers++
	return nil
}

func (f *fakeEngine) SweepExpiredChallenges(ctx context.Context) error {
	f.sweeps++
	return nil
}

func (f *fakeEngine) QueueDepth(ctx context.Context) (int, error) {
	return f.depth, nil
}

func TestSyncNudge_SkipsWhenOffline(t *testing.T) {
	engine := &fakeEngine{depth: 3}
	s := New(DefaultConfig(), engine, func() bool { return false })

	s.SyncNudge(context.Background())
	assert.Equal(t, 0, engine.reconciles)
}

func TestSyncNudge_SkipsEmptyQueue(t *testing.T) {
	engine := &fakeEngine{depth: 0}
	s := New(DefaultConfig(), engine, func() bool { return true })

	s.SyncNudge(context.Background())
	assert.Equal(t, 0, engine.reconciles)
}

func TestSyncNudge_TriggersWhenWorkPending(t *testing.T) {
	engine := &fakeEngine{depth: 2}
	s := New(DefaultConfig(), engine, func() bool { return true })

	s.SyncNudge(context.Background())
	assert.Equal(t, 1, engine.reconciles)
}

func TestRollover_CallsEngine(t *testing.T) {
	engine := &fakeEngine{}
	s := New(DefaultConfig(), engine, nil)

	s.Rollover(context.Background())
	assert.Equal(t, 1, engine.rollovers)
}

func TestExpirySweep_CallsEngine(t *testing.T) {
	engine := &fakeEngine{}
	s := New(DefaultConfig(), engine, nil)

	s.ExpirySweep(context.Background())
	assert.Equal(t, 1, engine.sweeps)
}
