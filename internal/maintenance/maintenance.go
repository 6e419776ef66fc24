// Package maintenance runs the periodic background jobs of the API process
// on a gocron scheduler: fixture/result sync followed by a stats refresh,
// and optionally the weekly auto-assign of missing tips.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/albapepper/footy-tipping/internal/window"
)

// Config controls job schedules. Zero duration disables the sync job.
type Config struct {
	FixtureSyncInterval time.Duration
	AutoAssign          bool
	AutoAssignAt        window.Weekly
	Location            *time.Location
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig(loc *time.Location) Config {
	return Config{
		FixtureSyncInterval: time.Hour,
		AutoAssignAt:        window.Weekly{Weekday: time.Thursday, Hour: 17},
		Location:            loc,
	}
}

// Tasks are the units of work the scheduler drives. Nil tasks are skipped.
type Tasks struct {
	SyncFixtures func(ctx context.Context) error
	UpdateStats  func(ctx context.Context) error
	AutoAssign   func(ctx context.Context) error
}

// Start registers the configured jobs and blocks until ctx is cancelled.
// Intended to be called with `go`.
func Start(ctx context.Context, tasks Tasks, cfg Config, logger *slog.Logger) error {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	sched, err := gocron.NewScheduler(
		gocron.WithLocation(loc),
		gocron.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	if cfg.FixtureSyncInterval > 0 && tasks.SyncFixtures != nil {
		_, err := sched.NewJob(
			gocron.DurationJob(cfg.FixtureSyncInterval),
			gocron.NewTask(func() {
				if runStep(ctx, "fixture sync", tasks.SyncFixtures, logger) == nil {
					runStep(ctx, "stats update", tasks.UpdateStats, logger)
				}
			}),
			gocron.WithName("fixture-sync"),
			gocron.WithStartAt(gocron.WithStartImmediately()),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("schedule fixture sync: %w", err)
		}
	}

	if cfg.AutoAssign && tasks.AutoAssign != nil {
		_, err := sched.NewJob(
			gocron.CronJob(WeeklyCron(cfg.AutoAssignAt), false),
			gocron.NewTask(func() { runStep(ctx, "auto-assign", tasks.AutoAssign, logger) }),
			gocron.WithName("auto-assign"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("schedule auto-assign: %w", err)
		}
	}

	sched.Start()
	logger.Info("Maintenance scheduler started",
		"jobs", len(sched.Jobs()),
		"fixture_sync", cfg.FixtureSyncInterval,
		"auto_assign", cfg.AutoAssign,
		"timezone", loc.String())

	<-ctx.Done()
	if err := sched.Shutdown(); err != nil {
		logger.Warn("Scheduler shutdown", "error", err)
	}
	logger.Info("Maintenance scheduler stopped")
	return nil
}

// WeeklyCron renders a weekly instant as a five-field crontab.
func WeeklyCron(w window.Weekly) string {
	return fmt.Sprintf("%d %d * * %d", w.Minute, w.Hour, int(w.Weekday))
}
