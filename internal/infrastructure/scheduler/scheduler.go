// Package scheduler runs the engine's periodic jobs: the sync nudge that
// retries undelivered work, the challenge expiry sweep, and the daily
// rollover that settles streaks.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/lexiquest/progress-engine/pkg/logger"
)

// Engine is the slice of the sync coordinator the jobs need.
type Engine interface {
	TriggerReconcile(ctx context.Context) error
	RolloverDay(ctx context.Context) error
	SweepExpiredChallenges(ctx context.Context) error
	QueueDepth(ctx context.Context) (int, error)
}

// Config holds scheduler settings.
type Config struct {
	// NudgeInterval is how often undelivered work is retried while the
	// device is online.
	NudgeInterval time.Duration

	// RolloverAt is the local wall-clock time of the daily rollover job,
	// in "HH:MM" form.
	RolloverAt string

	// SweepInterval is how often expired challenges are pruned.
	SweepInterval time.Duration

	Logger *slog.Logger
}

// DefaultConfig returns production settings.
func DefaultConfig() Config {
	return Config{
		NudgeInterval: 2 * time.Minute,
		RolloverAt:    "00:05",
		SweepInterval: time.Hour,
	}
}

// Scheduler owns the gocron instance.
type Scheduler struct {
	cron   *gocron.Scheduler
	engine Engine
	online func() bool
	logger *slog.Logger
	cfg    Config
}

// New creates a scheduler. online reports whether the device currently has
// a usable connection; nudges are skipped while it returns false.
func New(cfg Config, engine Engine, online func() bool) *Scheduler {
	if cfg.NudgeInterval <= 0 {
		cfg.NudgeInterval = 2 * time.Minute
	}
	if cfg.RolloverAt == "" {
		cfg.RolloverAt = "00:05"
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if online == nil {
		online = func() bool { return true }
	}
	return &Scheduler{
		cron:   gocron.NewScheduler(time.Local),
		engine: engine,
		online: online,
		logger: cfg.Logger.With(logger.Component("scheduler")),
		cfg:    cfg,
	}
}

// Start registers the jobs and begins running them in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.Every(s.cfg.NudgeInterval).Do(func() {
		s.SyncNudge(ctx)
	}); err != nil {
		return fmt.Errorf("register sync nudge: %w", err)
	}

	if _, err := s.cron.Every(s.cfg.SweepInterval).Do(func() {
		s.ExpirySweep(ctx)
	}); err != nil {
		return fmt.Errorf("register expiry sweep: %w", err)
	}

	if _, err := s.cron.Every(1).Day().At(s.cfg.RolloverAt).Do(func() {
		s.Rollover(ctx)
	}); err != nil {
		return fmt.Errorf("register daily rollover: %w", err)
	}

	s.cron.StartAsync()
	s.logger.Info("scheduler started",
		slog.Duration("nudge_interval", s.cfg.NudgeInterval),
		slog.String("rollover_at", s.cfg.RolloverAt),
	)
	return nil
}

// Stop halts the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// SyncNudge retries undelivered work when there is any and the device is
// online. Failures are logged, not escalated; the next tick tries again.
func (s *Scheduler) SyncNudge(ctx context.Context) {
	if !s.online() {
		return
	}
	depth, err := s.engine.QueueDepth(ctx)
	if err != nil {
		s.logger.Warn("queue depth check failed", logger.Err(err))
		return
	}
	if depth == 0 {
		return
	}

	s.logger.Debug("sync nudge", logger.QueueDepth(depth))
	if err := s.engine.TriggerReconcile(ctx); err != nil {
		s.logger.Warn("nudged sync failed", logger.Err(err))
	}
}

// ExpirySweep prunes challenges whose deadline has passed.
func (s *Scheduler) ExpirySweep(ctx context.Context) {
	if err := s.engine.SweepExpiredChallenges(ctx); err != nil {
		s.logger.Warn("challenge expiry sweep failed", logger.Err(err))
	}
}

// Rollover settles the calendar-day boundary.
func (s *Scheduler) Rollover(ctx context.Context) {
	if err := s.engine.RolloverDay(ctx); err != nil {
		s.logger.Warn("daily rollover failed", logger.Err(err))
	}
}
