package maintenance

import (
	"context"
	"log/slog"
	"time"
)

// runStep runs one scheduled task with timing. Failures are logged and
// returned but never stop the scheduler.
func runStep(ctx context.Context, name string, fn func(context.Context) error, logger *slog.Logger) error {
	if fn == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	err := fn(ctx)
	dur := time.Since(start).Round(time.Millisecond)
	if err != nil {
		logger.Warn("Scheduled task failed", "task", name, "duration", dur, "error", err)
		return err
	}
	logger.Info("Scheduled task complete", "task", name, "duration", dur)
	return nil
}
