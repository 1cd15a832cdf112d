package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/lexiquest/progress-engine/internal/domain/mutation"
	"github.com/lexiquest/progress-engine/internal/domain/progress"
	"github.com/lexiquest/progress-engine/internal/domain/shared"
	"github.com/lexiquest/progress-engine/pkg/circuitbreaker"
	"github.com/lexiquest/progress-engine/pkg/errclass"
	"github.com/lexiquest/progress-engine/pkg/logger"
	"github.com/lexiquest/progress-engine/pkg/retry"
)

// Remote operation names used as circuit breaker keys.
const (
	opPushMutation   = "push_mutation"
	opGetProgress    = "get_progress"
	opListChallenges = "list_challenges"
)

// RemoteAPI is the slice of the progress service the coordinator needs.
// *remote.Client satisfies it.
type RemoteAPI interface {
	GetProgress(ctx context.Context, userID string) (*progress.UserProgress, error)
	PushMutation(ctx context.Context, m mutation.Mutation) error
	ListChallenges(ctx context.Context, userID string) ([]progress.DailyChallenge, error)
	AdvanceChallenge(ctx context.Context, challengeID string, steps int, idempotencyKey string) error
	GetLeaderboard(ctx context.Context, period progress.Period) (progress.Leaderboard, error)
}

// Config holds coordinator settings.
type Config struct {
	UserID   string
	Logger   *slog.Logger
	Now      func() time.Time
	Retrier  *retry.Retrier
	Breakers *circuitbreaker.Registry
	Catalog  []progress.Achievement
}

// Coordinator owns the user's progress aggregate for the session. All writes
// funnel through it: each is applied to the in-memory aggregate and enqueued
// for delivery atomically with respect to reconciliation, then persisted
// locally. Network calls never run under the mutex, so the write path can't
// be blocked by a slow backend.
type Coordinator struct {
	userID   string
	store    progress.Store
	queue    *mutation.Queue
	remote   RemoteAPI
	bus      shared.EventBus
	breakers *circuitbreaker.Registry
	retrier  *retry.Retrier
	catalog  []progress.Achievement
	logger   *slog.Logger
	now      func() time.Time

	sf singleflight.Group

	mu         sync.Mutex
	state      State
	progress   *progress.UserProgress
	challenges []progress.DailyChallenge
}

// NewCoordinator creates a coordinator and primes it from the local store.
// A user with no stored snapshot starts from an empty aggregate. The
// coordinator always starts in the local state; connectivity triggers the
// first reconciliation.
func NewCoordinator(ctx context.Context, cfg Config, store progress.Store, queue *mutation.Queue, remote RemoteAPI, bus shared.EventBus) (*Coordinator, error) {
	if cfg.UserID == "" {
		return nil, fmt.Errorf("coordinator: %w: empty user id", shared.ErrInvalidArgument)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Retrier == nil {
		cfg.Retrier = retry.ProgressAPIRetrier()
	}
	if cfg.Breakers == nil {
		cfg.Breakers = circuitbreaker.NewRegistry()
	}
	if cfg.Catalog == nil {
		cfg.Catalog = progress.Catalog()
	}

	p, err := store.LoadProgress(ctx, cfg.UserID)
	if errors.Is(err, shared.ErrNotFound) {
		p = progress.NewUserProgress(cfg.UserID)
	} else if err != nil {
		return nil, fmt.Errorf("prime coordinator: %w", err)
	}

	challenges, err := store.LoadChallenges(ctx, cfg.UserID)
	if err != nil {
		return nil, fmt.Errorf("prime challenges: %w", err)
	}

	return &Coordinator{
		userID:     cfg.UserID,
		store:      store,
		queue:      queue,
		remote:     remote,
		bus:        bus,
		breakers:   cfg.Breakers,
		retrier:    cfg.Retrier,
		catalog:    cfg.Catalog,
		logger:     cfg.Logger.With(logger.Component("sync_coordinator"), logger.UserID(cfg.UserID)),
		now:        cfg.Now,
		state:      StateLocal,
		progress:   p,
		challenges: challenges,
	}, nil
}

// State returns the current sync state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a copy of the progress aggregate for read-side callers.
func (c *Coordinator) Snapshot() *progress.UserProgress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress.Clone()
}

// Challenges returns a copy of the current daily challenges.
func (c *Coordinator) Challenges() []progress.DailyChallenge {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]progress.DailyChallenge(nil), c.challenges...)
}

// QueueDepth returns the number of undelivered mutations.
func (c *Coordinator) QueueDepth(ctx context.Context) (int, error) {
	return c.queue.Len(ctx)
}

// AddXP credits XP earned outside a lesson.
func (c *Coordinator) AddXP(ctx context.Context, amount int, languageCode string) error {
	return c.record(ctx, mutation.KindAddXP, mutation.AddXPPayload{
		Amount:       amount,
		LanguageCode: languageCode,
	})
}

// CompleteLesson records a finished lesson.
func (c *Coordinator) CompleteLesson(ctx context.Context, p mutation.CompleteLessonPayload) error {
	return c.record(ctx, mutation.KindCompleteLesson, p)
}

// LearnWords records vocabulary learned outside a lesson.
func (c *Coordinator) LearnWords(ctx context.Context, count int, languageCode string) error {
	return c.record(ctx, mutation.KindLearnWords, mutation.LearnWordsPayload{
		Count:        count,
		LanguageCode: languageCode,
	})
}

// RecordStudyTime adds study minutes.
func (c *Coordinator) RecordStudyTime(ctx context.Context, minutes int) error {
	return c.record(ctx, mutation.KindRecordStudyTime, mutation.RecordStudyTimePayload{
		Minutes: minutes,
	})
}

// record is the single write path: apply to the aggregate and enqueue for
// delivery under one critical section, persist the snapshot, publish events.
// The mutation is appended to the durable queue before record returns,
// regardless of sync state.
func (c *Coordinator) record(ctx context.Context, kind mutation.Kind, payload any) error {
	m, err := mutation.New(c.userID, kind, payload, c.now())
	if err != nil {
		return err
	}

	events, err := c.applyLocal(ctx, m)
	if err != nil {
		return err
	}

	c.publish(ctx, events)
	c.nudgeIfRemote(ctx)
	return nil
}

// applyLocal folds the mutation into the aggregate, evaluates achievements
// and appends the mutation to the queue before releasing the lock, so a
// concurrent reconcile's merge-and-replay always observes it. The new
// snapshot is persisted after the lock is dropped; returned events are
// published by the caller.
func (c *Coordinator) applyLocal(ctx context.Context, m mutation.Mutation) ([]shared.Event, error) {
	now := c.now()

	c.mu.Lock()
	before := c.progress.Clone()
	if err := mutation.Apply(c.progress, m, now); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	events := c.diffEvents(before, now)
	events = append(events, c.unlockNewLocked(now)...)
	if _, err := c.queue.Enqueue(ctx, m); err != nil {
		// The aggregate must not claim progress the queue will never
		// deliver.
		c.progress = before
		c.mu.Unlock()
		return nil, err
	}
	snapshot := c.progress.Clone()
	c.mu.Unlock()

	if err := c.saveProgress(ctx, snapshot); err != nil {
		return nil, err
	}
	return events, nil
}

// diffEvents derives progress events from an aggregate transition. Callers
// hold the mutex.
func (c *Coordinator) diffEvents(before *progress.UserProgress, now time.Time) []shared.Event {
	var events []shared.Event
	after := c.progress

	if gained := after.TotalXP - before.TotalXP; gained > 0 {
		lang := ""
		for code, xp := range after.LanguageXP {
			if xp > before.LanguageXP[code] {
				lang = code
				break
			}
		}
		events = append(events, progress.NewXPGainedEvent(c.userID, gained, after.TotalXP, lang, now))
	}
	if after.Level > before.Level {
		events = append(events, progress.NewLevelUpEvent(c.userID, before.Level, after.Level, now))
	}
	if after.CurrentStreak > before.CurrentStreak {
		events = append(events, progress.NewStreakExtendedEvent(c.userID, after.CurrentStreak, now))
	}
	return events
}

// unlockNewLocked stamps any newly satisfied achievements and credits their
// XP rewards, looping because a reward can satisfy an XP-based requirement.
// Reward XP is provisional: the server derives its own unlocks from the
// pushed mutations, and its snapshot wins on reconciliation. Callers hold
// the mutex.
func (c *Coordinator) unlockNewLocked(now time.Time) []shared.Event {
	var events []shared.Event
	for {
		newly := progress.NewlySatisfied(c.progress, c.catalog)
		if len(newly) == 0 {
			return events
		}
		for _, a := range newly {
			c.progress.UnlockedAchievements[a.ID] = now
			if a.XPReward > 0 {
				oldLevel := c.progress.Level
				_ = c.progress.AddXP(a.XPReward, "", now)
				if c.progress.Level > oldLevel {
					events = append(events, progress.NewLevelUpEvent(c.userID, oldLevel, c.progress.Level, now))
				}
			}
			events = append(events, progress.NewAchievementUnlockedEvent(c.userID, a, now))
		}
	}
}

// saveProgress persists a snapshot with the store retrier, so a transiently
// busy database doesn't fail a user action.
func (c *Coordinator) saveProgress(ctx context.Context, p *progress.UserProgress) error {
	return retry.StoreRetrier().Do(ctx, func(ctx context.Context) error {
		return c.store.SaveProgress(ctx, p)
	})
}

func (c *Coordinator) publish(ctx context.Context, events []shared.Event) {
	if c.bus == nil {
		return
	}
	for _, e := range events {
		_ = c.bus.Publish(ctx, e)
	}
}

func (c *Coordinator) publishOne(ctx context.Context, e shared.Event) {
	c.publish(ctx, []shared.Event{e})
}

// nudgeIfRemote starts a background reconciliation when the session is
// synced, so a fresh mutation reaches the server promptly. The singleflight
// group collapses overlapping nudges.
func (c *Coordinator) nudgeIfRemote(ctx context.Context) {
	if c.State() != StateRemote {
		return
	}
	go func() {
		_ = c.TriggerReconcile(context.WithoutCancel(ctx))
	}()
}

// setState transitions the sync state, publishing the change. No-op when
// the state is unchanged.
func (c *Coordinator) setState(ctx context.Context, to State) {
	c.mu.Lock()
	from := c.state
	c.state = to
	c.mu.Unlock()

	if from == to {
		return
	}
	c.logger.Info("sync state changed", logger.SyncState(to.String()),
		slog.String("from", from.String()))
	c.publishOne(ctx, NewStateChangedEvent(c.userID, from, to, c.now()))
}

// OnConnectivityLost drops back to the local state. Queued work is untouched.
func (c *Coordinator) OnConnectivityLost(ctx context.Context) {
	c.setState(ctx, StateLocal)
}

// TriggerReconcile runs one reconciliation pass. Concurrent triggers from
// any source (connectivity edge, scheduler nudge, fresh mutation) collapse
// into a single in-flight pass.
func (c *Coordinator) TriggerReconcile(ctx context.Context) error {
	_, err, _ := c.sf.Do("reconcile", func() (any, error) {
		return nil, c.reconcile(ctx)
	})
	return err
}

// reconcile drains the queue to the server, then adopts the server's
// authoritative snapshot. Failure at either step returns the coordinator to
// the local state with all undelivered work still queued.
func (c *Coordinator) reconcile(ctx context.Context) error {
	started := c.now()
	c.setState(ctx, StateSyncing)

	pushed := 0
	err := c.queue.Drain(ctx, func(ctx context.Context, m mutation.Mutation) error {
		if err := c.pushOne(ctx, m); err != nil {
			return err
		}
		pushed++
		return nil
	})
	if err != nil {
		return c.abort(ctx, fmt.Errorf("reconcile drain: %w", err))
	}

	remoteSnapshot, err := c.pullProgress(ctx)
	if err != nil {
		return c.abort(ctx, fmt.Errorf("reconcile pull: %w", err))
	}

	c.mu.Lock()
	c.progress.MergeAuthoritative(remoteSnapshot)
	// Mutations recorded while the pull was in flight are already reflected
	// locally but not in the adopted snapshot; fold them back in.
	if pending, listErr := c.queue.List(ctx); listErr == nil {
		for _, m := range pending {
			_ = mutation.Apply(c.progress, m, m.CreatedAt)
		}
	}
	snapshot := c.progress.Clone()
	c.mu.Unlock()

	if err := c.saveProgress(ctx, snapshot); err != nil {
		return c.abort(ctx, fmt.Errorf("reconcile persist: %w", err))
	}

	c.refreshChallenges(ctx)

	c.setState(ctx, StateRemote)
	c.logger.Info("sync completed",
		slog.Int("pushed", pushed),
		logger.Latency(c.now().Sub(started)),
	)
	c.publishOne(ctx, NewSyncCompletedEvent(c.userID, pushed, c.now().Sub(started), c.now()))
	return nil
}

// abort returns to the local state after a failed pass, surfacing an auth
// rejection to the app.
func (c *Coordinator) abort(ctx context.Context, err error) error {
	if errclass.IsAuth(err) {
		c.logger.Warn("sync halted: re-authentication required", logger.Err(err))
		c.publishOne(ctx, NewAuthRequiredEvent(c.userID, c.now()))
	} else {
		c.logger.Warn("sync pass failed", logger.Err(err))
	}
	c.setState(ctx, StateLocal)
	return err
}

// pushOne delivers a single mutation behind the push breaker and retrier.
// A breaker short circuit comes back marked retryable so the queue keeps
// the mutation without consulting the error taxonomy.
func (c *Coordinator) pushOne(ctx context.Context, m mutation.Mutation) error {
	if err := c.breakers.Check(opPushMutation); err != nil {
		return retry.Retryable(err)
	}

	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		return c.deliver(ctx, m)
	})
	if err == nil {
		c.breakers.RecordSuccess(opPushMutation)
		c.logger.Debug("mutation delivered",
			logger.MutationID(m.ID),
			logger.Sequence(m.Seq),
		)
		return nil
	}

	c.breakers.RecordFailure(opPushMutation)
	if !mutation.KeepQueued(err) {
		c.publishOne(ctx, NewMutationDiscardedEvent(
			c.userID, m.ID, string(m.Kind), errclass.KindOf(err).String(), c.now()))
	}
	return err
}

// deliver routes a mutation to its wire operation. Challenge advances have a
// dedicated endpoint; everything else travels as a generic mutation.
func (c *Coordinator) deliver(ctx context.Context, m mutation.Mutation) error {
	if m.Kind == mutation.KindAdvanceChallenge {
		p, err := mutation.DecodePayload[mutation.AdvanceChallengePayload](m)
		if err != nil {
			return err
		}
		return c.remote.AdvanceChallenge(ctx, p.ChallengeID, p.Steps, m.IdempotencyKey)
	}
	return c.remote.PushMutation(ctx, m)
}

// pullProgress fetches the authoritative snapshot behind its own breaker.
func (c *Coordinator) pullProgress(ctx context.Context) (*progress.UserProgress, error) {
	if err := c.breakers.Check(opGetProgress); err != nil {
		return nil, retry.Retryable(err)
	}

	var snapshot *progress.UserProgress
	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		var pullErr error
		snapshot, pullErr = c.remote.GetProgress(ctx, c.userID)
		return pullErr
	})
	if err != nil {
		c.breakers.RecordFailure(opGetProgress)
		return nil, err
	}
	c.breakers.RecordSuccess(opGetProgress)
	return snapshot, nil
}

// refreshChallenges pulls today's challenges. Best effort: a failure leaves
// the stored snapshot in place and never fails the sync pass.
func (c *Coordinator) refreshChallenges(ctx context.Context) {
	if err := c.breakers.Check(opListChallenges); err != nil {
		return
	}

	challenges, err := c.remote.ListChallenges(ctx, c.userID)
	if err != nil {
		c.breakers.RecordFailure(opListChallenges)
		c.logger.Warn("challenge refresh failed", logger.Err(err))
		return
	}
	c.breakers.RecordSuccess(opListChallenges)

	c.mu.Lock()
	c.challenges = challenges
	c.mu.Unlock()

	if err := c.store.SaveChallenges(ctx, c.userID, challenges); err != nil {
		c.logger.Warn("challenge snapshot save failed", logger.Err(err))
	}
}

// AdvanceChallenge moves a daily challenge forward. Completing a challenge
// credits its XP reward locally; the server credits its own copy when the
// advance mutation lands, and its snapshot wins on the next reconciliation.
func (c *Coordinator) AdvanceChallenge(ctx context.Context, challengeID string, steps int) error {
	now := c.now()

	c.mu.Lock()
	idx := -1
	for i := range c.challenges {
		if c.challenges[i].ID == challengeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("challenge %s: %w", challengeID, shared.ErrNotFound)
	}

	completed, err := c.challenges[idx].Advance(steps, now)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	done := c.challenges[idx]
	snapshot := append([]progress.DailyChallenge(nil), c.challenges...)
	c.mu.Unlock()

	if err := c.store.SaveChallenges(ctx, c.userID, snapshot); err != nil {
		return err
	}

	m, err := mutation.New(c.userID, mutation.KindAdvanceChallenge, mutation.AdvanceChallengePayload{
		ChallengeID: challengeID,
		Steps:       steps,
	}, now)
	if err != nil {
		return err
	}
	if _, err := c.queue.Enqueue(ctx, m); err != nil {
		return err
	}

	if completed {
		c.publishOne(ctx, progress.NewChallengeCompletedEvent(c.userID, done, now))
		if done.XPReward > 0 {
			if err := c.creditLocalXP(ctx, done.XPReward, now); err != nil {
				return err
			}
		}
	}

	c.nudgeIfRemote(ctx)
	return nil
}

// creditLocalXP applies a provisional XP credit to the aggregate without
// enqueueing a mutation. Used for rewards the server computes on its own.
func (c *Coordinator) creditLocalXP(ctx context.Context, amount int, now time.Time) error {
	c.mu.Lock()
	before := c.progress.Clone()
	if err := c.progress.AddXP(amount, "", now); err != nil {
		c.mu.Unlock()
		return err
	}
	events := c.diffEvents(before, now)
	events = append(events, c.unlockNewLocked(now)...)
	snapshot := c.progress.Clone()
	c.mu.Unlock()

	if err := c.saveProgress(ctx, snapshot); err != nil {
		return err
	}
	c.publish(ctx, events)
	return nil
}

// RolloverDay is called by the scheduler shortly after midnight: it zeroes a
// broken streak and persists the result.
func (c *Coordinator) RolloverDay(ctx context.Context) error {
	now := c.now()

	c.mu.Lock()
	lost := c.progress.CurrentStreak
	reset := c.progress.ResetStreakIfBroken(now)
	snapshot := c.progress.Clone()
	c.mu.Unlock()

	if !reset {
		return nil
	}

	if err := c.saveProgress(ctx, snapshot); err != nil {
		return err
	}
	c.logger.Info("streak reset", logger.StreakDays(lost))
	c.publishOne(ctx, progress.NewStreakResetEvent(c.userID, lost, now))
	return nil
}

// SweepExpiredChallenges drops challenges whose deadline has passed and
// persists the pruned set. Expiry itself is derived from ExpiresAt, so the
// sweep only reclaims storage and keeps read-side listings short.
func (c *Coordinator) SweepExpiredChallenges(ctx context.Context) error {
	now := c.now()

	c.mu.Lock()
	kept := c.challenges[:0:0]
	expired := 0
	for _, ch := range c.challenges {
		if ch.IsExpired(now) {
			expired++
			continue
		}
		kept = append(kept, ch)
	}
	if expired == 0 {
		c.mu.Unlock()
		return nil
	}
	c.challenges = kept
	snapshot := append([]progress.DailyChallenge(nil), kept...)
	c.mu.Unlock()

	if err := c.store.SaveChallenges(ctx, c.userID, snapshot); err != nil {
		return err
	}
	c.logger.Debug("expired challenges pruned", slog.Int("count", expired))
	return nil
}

// Leaderboard returns standings for a period: fresh from the server when
// synced, otherwise the stored copy with its original FetchedAt so callers
// can label it stale.
func (c *Coordinator) Leaderboard(ctx context.Context, period progress.Period) (progress.Leaderboard, error) {
	if c.State() == StateRemote {
		lb, err := c.remote.GetLeaderboard(ctx, period)
		if err == nil {
			if saveErr := c.store.SaveLeaderboard(ctx, lb); saveErr != nil {
				c.logger.Warn("leaderboard cache save failed", logger.Err(saveErr))
			}
			return lb, nil
		}
		c.logger.Warn("leaderboard fetch failed, falling back to cache", logger.Err(err))
	}
	return c.store.LoadLeaderboard(ctx, period)
}
