package analyst

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/albapepper/footy-tipping/internal/fixture"
	"github.com/albapepper/footy-tipping/internal/store"
)

// PickerStore is the persistence the tipperbot needs.
type PickerStore interface {
	UserByID(ctx context.Context, id int64) (store.User, error)
	ListFixtures(ctx context.Context) ([]store.Fixture, error)
	ReplaceTips(ctx context.Context, userID int64, tips []store.Tip) (int, error)
}

// Picker submits the tipperbot's picks. Unlike users, the bot's existing
// tips for the picked matches are replaced.
type Picker struct {
	analyst *Analyst
	store   PickerStore
	botID   int64
	now     func() time.Time
	logger  *slog.Logger
}

// PickResult summarises a picker run.
type PickResult struct {
	Round   int
	Picked  []Choice
	Skipped []string
}

// Summary returns a human-readable summary.
func (r PickResult) Summary() string {
	return fmt.Sprintf("round=%d picked=%d skipped=%d", r.Round, len(r.Picked), len(r.Skipped))
}

// NewPicker creates a Picker writing tips as botID.
func NewPicker(a *Analyst, s PickerStore, botID int64, logger *slog.Logger) *Picker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Picker{analyst: a, store: s, botID: botID, now: time.Now, logger: logger}
}

// Run picks every fixture in matchIDs, or the whole current round when
// matchIDs is empty. A fixture whose pick fails is skipped.
func (p *Picker) Run(ctx context.Context, matchIDs []string) (PickResult, error) {
	var result PickResult
	if !p.analyst.Enabled() {
		return result, ErrDisabled
	}

	bot, err := p.store.UserByID(ctx, p.botID)
	if err != nil {
		return result, fmt.Errorf("load tipperbot user %d: %w", p.botID, err)
	}
	all, err := p.store.ListFixtures(ctx)
	if err != nil {
		return result, err
	}
	round, ok := fixture.CurrentRound(all, p.now())
	if !ok {
		return result, fmt.Errorf("no fixtures loaded")
	}
	result.Round = round

	targets := fixture.InRound(all, round)
	if len(matchIDs) > 0 {
		want := make(map[string]bool, len(matchIDs))
		for _, id := range matchIDs {
			want[id] = true
		}
		targets = nil
		for _, f := range all {
			if want[f.MatchID] {
				targets = append(targets, f)
			}
		}
	}

	var tips []store.Tip
	for _, f := range targets {
		choice, err := p.analyst.Pick(ctx, f)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			p.logger.Warn("Tipperbot skipped match", "match_id", f.MatchID, "error", err)
			result.Skipped = append(result.Skipped, f.MatchID)
			continue
		}
		p.logger.Info("Tipperbot pick", "match_id", f.MatchID, "team", choice.Team, "reason", choice.Reason)
		result.Picked = append(result.Picked, choice)
		tips = append(tips, store.Tip{UserID: bot.ID, Username: bot.Username, MatchID: f.MatchID, SelectedTeam: choice.Team})
	}

	if _, err := p.store.ReplaceTips(ctx, bot.ID, tips); err != nil {
		return result, err
	}
	return result, nil
}
