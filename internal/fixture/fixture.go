// Package fixture resolves the active competition round from stored
// fixtures and the clock.
package fixture

import (
	"fmt"
	"time"

	"github.com/albapepper/footy-tipping/internal/store"
)

// MatchDuration is how long after kickoff a match without a recorded result
// is treated as played.
const MatchDuration = 2 * time.Hour

// Played reports whether a fixture is finished at now. A fixture with no
// kickoff time is never played until its result arrives.
func Played(f store.Fixture, now time.Time) bool {
	if f.WinningTeam != nil {
		return true
	}
	if f.Kickoff == nil {
		return false
	}
	return !f.Kickoff.Add(MatchDuration).After(now)
}

// CurrentRound returns the lowest round that still has an unplayed fixture.
// Once every fixture is played the last round stays current. ok is false
// only when there are no fixtures at all.
func CurrentRound(fixtures []store.Fixture, now time.Time) (round int, ok bool) {
	if len(fixtures) == 0 {
		return 0, false
	}

	open := false
	last := fixtures[0].Round
	for _, f := range fixtures {
		if f.Round > last {
			last = f.Round
		}
		if Played(f, now) {
			continue
		}
		if !open || f.Round < round {
			round = f.Round
			open = true
		}
	}
	if !open {
		return last, true
	}
	return round, true
}

// InRound filters fixtures down to one round, preserving order.
func InRound(fixtures []store.Fixture, round int) []store.Fixture {
	var out []store.Fixture
	for _, f := range fixtures {
		if f.Round == round {
			out = append(out, f)
		}
	}
	return out
}

// MatchIDs returns the match ids of fixtures in order.
func MatchIDs(fixtures []store.Fixture) []string {
	ids := make([]string, 0, len(fixtures))
	for _, f := range fixtures {
		ids = append(ids, f.MatchID)
	}
	return ids
}

// Summary returns a one-line description for logs and CLI output.
func Summary(f store.Fixture) string {
	kick := "TBD"
	if f.Kickoff != nil {
		kick = f.Kickoff.UTC().Format(time.RFC3339)
	}
	result := "pending"
	if f.WinningTeam != nil {
		result = *f.WinningTeam
	}
	return fmt.Sprintf("match=%s round=%d %s v %s kickoff=%s result=%s",
		f.MatchID, f.Round, f.HomeTeam, f.AwayTeam, kick, result)
}
