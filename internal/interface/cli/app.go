// Package cli is the lexisync command line interface: one-shot commands for
// recording progress and inspecting state, plus a daemon mode that keeps the
// engine syncing in the background.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lexiquest/progress-engine/config"
	"github.com/lexiquest/progress-engine/internal/application/eventhandler"
	"github.com/lexiquest/progress-engine/internal/application/query"
	"github.com/lexiquest/progress-engine/internal/application/syncer"
	"github.com/lexiquest/progress-engine/internal/domain/mutation"
	"github.com/lexiquest/progress-engine/internal/infrastructure/auth"
	"github.com/lexiquest/progress-engine/internal/infrastructure/connectivity"
	"github.com/lexiquest/progress-engine/internal/infrastructure/messaging"
	"github.com/lexiquest/progress-engine/internal/infrastructure/persistence/sqlite"
	"github.com/lexiquest/progress-engine/internal/infrastructure/remote"
	"github.com/lexiquest/progress-engine/internal/infrastructure/scheduler"
	"github.com/lexiquest/progress-engine/pkg/logger"
)

// App bundles the wired engine for the lifetime of one command or daemon
// session.
type App struct {
	cfg     *config.Config
	log     *slog.Logger
	db      *sqlite.DB
	tokens  *auth.TokenManager
	coord   *syncer.Coordinator
	queries *query.Service
	monitor *connectivity.Monitor
	sched   *scheduler.Scheduler
}

// newApp wires the engine from configuration.
func newApp(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
	})
	slog.SetDefault(log)

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	app := &App{cfg: cfg, log: log, db: db}

	bus := messaging.NewEventBus(log)
	eventhandler.RegisterLogging(bus, log)

	app.monitor = connectivity.NewMonitor(
		func() {
			go func() {
				if err := app.coord.TriggerReconcile(context.WithoutCancel(ctx)); err != nil {
					log.Warn("reconnect sync failed", logger.Err(err))
				}
			}()
		},
		func() { app.coord.OnConnectivityLost(ctx) },
		log,
	)

	app.tokens = auth.NewTokenManager(
		sqlite.NewCredentialRepository(db),
		app.monitor.SetAuthenticated,
		log,
	)

	client := remote.NewClient(remote.Config{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
		UserAgent:         "lexisync/1.0",
		Logger:            log,
	}, app.tokens)

	store := sqlite.NewProgressRepository(db)
	queue := mutation.NewQueue(sqlite.NewQueueRepository(db), log)

	app.coord, err = syncer.NewCoordinator(ctx, syncer.Config{
		UserID: cfg.UserID,
		Logger: log,
	}, store, queue, client, bus)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("wire coordinator: %w", err)
	}

	app.queries = query.NewService(app.coord)
	app.sched = scheduler.New(scheduler.Config{
		NudgeInterval: cfg.Scheduler.NudgeInterval,
		RolloverAt:    cfg.Scheduler.RolloverAt,
		SweepInterval: cfg.Scheduler.SweepInterval,
		Logger:        log,
	}, app.coord, app.monitor.Online)

	return app, nil
}

// Close releases resources.
func (a *App) Close() error {
	return a.db.Close()
}
