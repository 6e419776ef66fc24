package fixture

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/albapepper/footy-tipping/internal/store"
)

// Source supplies the season draw, typically the fixture feed.
type Source interface {
	Fetch(ctx context.Context) ([]store.Fixture, error)
}

// Upserter persists fixtures.
type Upserter interface {
	UpsertFixtures(ctx context.Context, fixtures []store.Fixture) (int, error)
}

// SyncResult tracks the outcome of one sync run.
type SyncResult struct {
	Fetched  int
	Upserted int
	Results  int
	Duration time.Duration
}

// Summary returns a human-readable summary.
func (r SyncResult) Summary() string {
	return fmt.Sprintf("fetched=%d upserted=%d with_result=%d dur=%s",
		r.Fetched, r.Upserted, r.Results, r.Duration.Round(time.Millisecond))
}

// Sync pulls the draw from src and upserts it. Existing fixtures only get
// their kickoff and result refreshed.
func Sync(ctx context.Context, src Source, dst Upserter, logger *slog.Logger) (SyncResult, error) {
	start := time.Now()
	var result SyncResult

	fixtures, err := src.Fetch(ctx)
	if err != nil {
		return result, fmt.Errorf("fetch fixtures: %w", err)
	}
	result.Fetched = len(fixtures)
	for _, f := range fixtures {
		if f.WinningTeam != nil {
			result.Results++
		}
	}

	n, err := dst.UpsertFixtures(ctx, fixtures)
	result.Upserted = n
	result.Duration = time.Since(start)
	if err != nil {
		return result, fmt.Errorf("upsert fixtures: %w", err)
	}

	logger.Info("Fixture sync complete", "summary", result.Summary())
	return result, nil
}
