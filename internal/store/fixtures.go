package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

const fixtureColumns = `match_id, round, home_team, away_team, kickoff, winning_team`

func scanFixture(row interface{ Scan(...any) error }) (Fixture, error) {
	var f Fixture
	var kickoff sql.NullTime
	var winner sql.NullString
	if err := row.Scan(&f.MatchID, &f.Round, &f.HomeTeam, &f.AwayTeam, &kickoff, &winner); err != nil {
		return Fixture{}, err
	}
	if kickoff.Valid {
		t := kickoff.Time.UTC()
		f.Kickoff = &t
	}
	if winner.Valid && winner.String != "" {
		f.WinningTeam = &winner.String
	}
	return f, nil
}

func (s *SQLStore) listFixtures(ctx context.Context, query string, args ...any) ([]Fixture, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fixtures []Fixture
	for rows.Next() {
		f, err := scanFixture(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fixture: %w", err)
		}
		fixtures = append(fixtures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	SortFixtures(fixtures)
	return fixtures, nil
}

// ListFixtures returns the whole season.
func (s *SQLStore) ListFixtures(ctx context.Context) ([]Fixture, error) {
	fixtures, err := s.listFixtures(ctx, `SELECT `+fixtureColumns+` FROM fixture_free`)
	if err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}
	return fixtures, nil
}

// FixturesByRound returns the fixtures of one round.
func (s *SQLStore) FixturesByRound(ctx context.Context, round int) ([]Fixture, error) {
	fixtures, err := s.listFixtures(ctx, `SELECT `+fixtureColumns+` FROM fixture_free WHERE round = $1`, round)
	if err != nil {
		return nil, fmt.Errorf("fixtures for round %d: %w", round, err)
	}
	return fixtures, nil
}

// FixtureByMatchID loads one fixture or returns ErrNotFound.
func (s *SQLStore) FixtureByMatchID(ctx context.Context, matchID string) (Fixture, error) {
	f, err := scanFixture(s.queryRow(ctx, `SELECT `+fixtureColumns+` FROM fixture_free WHERE match_id = $1`, matchID))
	if errors.Is(err, sql.ErrNoRows) {
		return Fixture{}, ErrNotFound
	}
	if err != nil {
		return Fixture{}, fmt.Errorf("load fixture %s: %w", matchID, err)
	}
	return f, nil
}

// Rounds returns the distinct round numbers in ascending order.
func (s *SQLStore) Rounds(ctx context.Context) ([]int, error) {
	rows, err := s.query(ctx, `SELECT DISTINCT round FROM fixture_free ORDER BY round`)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	defer rows.Close()

	var rounds []int
	for rows.Next() {
		var r int
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		rounds = append(rounds, r)
	}
	return rounds, rows.Err()
}

// UpsertFixtures inserts new fixtures and refreshes kickoff and result on
// existing ones. Teams and round are never rewritten, and a NULL kickoff or
// result in the incoming row keeps the stored value, so a recorded result
// cannot be cleared by a sync.
func (s *SQLStore) UpsertFixtures(ctx context.Context, fixtures []Fixture) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.dialect.rebind(`
		INSERT INTO fixture_free (match_id, round, home_team, away_team, kickoff, winning_team)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (match_id) DO UPDATE SET
			kickoff = COALESCE(excluded.kickoff, fixture_free.kickoff),
			winning_team = COALESCE(excluded.winning_team, fixture_free.winning_team)`))
	if err != nil {
		return 0, fmt.Errorf("prepare fixture upsert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, f := range fixtures {
		var kickoff any
		if f.Kickoff != nil {
			kickoff = f.Kickoff.UTC()
		}
		if _, err := stmt.ExecContext(ctx, f.MatchID, f.Round, f.HomeTeam, f.AwayTeam, kickoff, f.WinningTeam); err != nil {
			return count, fmt.Errorf("upsert fixture %s: %w", f.MatchID, err)
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return count, nil
}

// SortFixtures orders fixtures by round, then kickoff (unknown last), then
// match id compared numerically when both ids are numbers.
func SortFixtures(fixtures []Fixture) {
	sort.SliceStable(fixtures, func(i, j int) bool {
		a, b := fixtures[i], fixtures[j]
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		switch {
		case a.Kickoff != nil && b.Kickoff != nil && !a.Kickoff.Equal(*b.Kickoff):
			return a.Kickoff.Before(*b.Kickoff)
		case a.Kickoff != nil && b.Kickoff == nil:
			return true
		case a.Kickoff == nil && b.Kickoff != nil:
			return false
		}
		return LessMatchID(a.MatchID, b.MatchID)
	})
}

// LessMatchID compares match ids numerically when possible.
func LessMatchID(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}
