// Package eventhandler wires logging subscribers onto the event bus. A
// host application would register its own handlers next to these to drive
// celebration UI; the engine itself only records what happened.
package eventhandler

import (
	"context"
	"log/slog"

	"github.com/lexiquest/progress-engine/internal/application/syncer"
	"github.com/lexiquest/progress-engine/internal/domain/progress"
	"github.com/lexiquest/progress-engine/internal/domain/shared"
	"github.com/lexiquest/progress-engine/pkg/logger"
)

// RegisterLogging subscribes structured-log handlers for the domain events
// worth an operator's attention.
func RegisterLogging(bus shared.EventBus, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(logger.Component("events"))

	bus.Subscribe(shared.EventLevelUp, func(ctx context.Context, e shared.Event) error {
		if ev, ok := e.(progress.LevelUpEvent); ok {
			log.Info("level up",
				logger.UserID(ev.AggregateID()),
				slog.Int("old_level", ev.OldLevel),
				logger.LevelNum(ev.NewLevel),
			)
		}
		return nil
	})

	bus.Subscribe(shared.EventAchievementUnlocked, func(ctx context.Context, e shared.Event) error {
		if ev, ok := e.(progress.AchievementUnlockedEvent); ok {
			log.Info("achievement unlocked",
				logger.UserID(ev.AggregateID()),
				logger.AchievementID(ev.AchievementID),
				slog.String("rarity", ev.Rarity),
			)
		}
		return nil
	})

	bus.Subscribe(shared.EventStreakReset, func(ctx context.Context, e shared.Event) error {
		if ev, ok := e.(progress.StreakResetEvent); ok {
			log.Info("streak reset",
				logger.UserID(ev.AggregateID()),
				logger.StreakDays(ev.LostStreakDays),
			)
		}
		return nil
	})

	bus.Subscribe(shared.EventChallengeCompleted, func(ctx context.Context, e shared.Event) error {
		if ev, ok := e.(progress.ChallengeCompletedEvent); ok {
			log.Info("challenge completed",
				logger.UserID(ev.AggregateID()),
				logger.ChallengeID(ev.ChallengeID),
				logger.XPAmount(ev.XPReward),
			)
		}
		return nil
	})

	bus.Subscribe(shared.EventMutationDiscarded, func(ctx context.Context, e shared.Event) error {
		if ev, ok := e.(syncer.MutationDiscardedEvent); ok {
			log.Warn("mutation discarded by server",
				logger.UserID(ev.AggregateID()),
				logger.MutationID(ev.MutationID),
				logger.MutationKind(ev.Kind),
				slog.String("reason", ev.Reason),
			)
		}
		return nil
	})

	bus.Subscribe(shared.EventAuthRequired, func(ctx context.Context, e shared.Event) error {
		log.Warn("re-authentication required", logger.UserID(e.AggregateID()))
		return nil
	})

	bus.Subscribe(shared.EventSyncCompleted, func(ctx context.Context, e shared.Event) error {
		if ev, ok := e.(syncer.SyncCompletedEvent); ok {
			log.Info("sync completed",
				logger.UserID(ev.AggregateID()),
				slog.Int("pushed", ev.Pushed),
				logger.Latency(ev.Duration),
			)
		}
		return nil
	})
}
