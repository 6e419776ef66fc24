package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "tipping.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
	assert.Equal(t, "sqlite", s.Dialect())
	assert.NoError(t, s.Ping(context.Background()))
}

func TestRebind(t *testing.T) {
	q := "SELECT * FROM tips WHERE user_id = $1 AND match_id IN ($2, $10)"
	assert.Equal(t, q, postgresDialect.rebind(q))
	assert.Equal(t, "SELECT * FROM tips WHERE user_id = ?1 AND match_id IN (?2, ?10)", sqliteDialect.rebind(q))
	assert.Equal(t, "$3, $4, $5", placeholders(3, 3))
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, User{Username: "alice", Name: ptr("Alice")})
	require.NoError(t, err)
	assert.NotZero(t, alice.ID)
	assert.Equal(t, "default.jpg", alice.Avatar)

	_, err = s.CreateUser(ctx, User{Username: "alice"})
	assert.Error(t, err, "usernames are unique")

	got, err := s.UserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	require.NotNil(t, got.Name)
	assert.Equal(t, "Alice", *got.Name)

	_, err = s.UserByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFixturesUpsertAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	kick := time.Date(2026, 3, 6, 9, 0, 0, 0, time.UTC)

	n, err := s.UpsertFixtures(ctx, []Fixture{
		{MatchID: "10", Round: 2, HomeTeam: "Storm", AwayTeam: "Eels"},
		{MatchID: "2", Round: 1, HomeTeam: "Broncos", AwayTeam: "Cowboys", Kickoff: &kick},
		{MatchID: "1", Round: 1, HomeTeam: "Panthers", AwayTeam: "Roosters", Kickoff: &kick},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err := s.ListFixtures(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"1", "2", "10"}, []string{all[0].MatchID, all[1].MatchID, all[2].MatchID})
	require.NotNil(t, all[0].Kickoff)
	assert.True(t, all[0].Kickoff.Equal(kick))
	assert.Nil(t, all[2].Kickoff)

	// A re-sync records the result but never rewrites teams.
	_, err = s.UpsertFixtures(ctx, []Fixture{
		{MatchID: "1", Round: 1, HomeTeam: "X", AwayTeam: "Y", Kickoff: &kick, WinningTeam: ptr("Panthers")},
	})
	require.NoError(t, err)
	f, err := s.FixtureByMatchID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Panthers", f.HomeTeam)
	require.NotNil(t, f.WinningTeam)
	assert.Equal(t, "Panthers", *f.WinningTeam)

	round1, err := s.FixturesByRound(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, round1, 2)

	rounds, err := s.Rounds(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, rounds)

	_, err = s.FixtureByMatchID(ctx, "404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertFixturesKeepsStoredValuesOnNull(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	kick := time.Date(2026, 3, 6, 9, 0, 0, 0, time.UTC)

	_, err := s.UpsertFixtures(ctx, []Fixture{
		{MatchID: "1", Round: 1, HomeTeam: "Panthers", AwayTeam: "Roosters", Kickoff: &kick},
		{MatchID: "2", Round: 1, HomeTeam: "Broncos", AwayTeam: "Cowboys", Kickoff: &kick, WinningTeam: ptr("Broncos")},
	})
	require.NoError(t, err)

	// Result-only row for match 1, kickoff-only row for match 2.
	_, err = s.UpsertFixtures(ctx, []Fixture{
		{MatchID: "1", Round: 1, HomeTeam: "Panthers", AwayTeam: "Roosters", WinningTeam: ptr("Roosters")},
		{MatchID: "2", Round: 1, HomeTeam: "Broncos", AwayTeam: "Cowboys", Kickoff: &kick},
	})
	require.NoError(t, err)

	first, err := s.FixtureByMatchID(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, first.Kickoff)
	assert.True(t, first.Kickoff.Equal(kick))
	require.NotNil(t, first.WinningTeam)
	assert.Equal(t, "Roosters", *first.WinningTeam)

	second, err := s.FixtureByMatchID(ctx, "2")
	require.NoError(t, err)
	require.NotNil(t, second.WinningTeam)
	assert.Equal(t, "Broncos", *second.WinningTeam)

	moved := kick.Add(2 * time.Hour)
	_, err = s.UpsertFixtures(ctx, []Fixture{{MatchID: "1", Round: 1, HomeTeam: "Panthers", AwayTeam: "Roosters", Kickoff: &moved}})
	require.NoError(t, err)
	first, err = s.FixtureByMatchID(ctx, "1")
	require.NoError(t, err)
	assert.True(t, first.Kickoff.Equal(moved))
}

func TestInsertTipsKeepsFirstPick(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u, err := s.CreateUser(ctx, User{Username: "bob"})
	require.NoError(t, err)

	n, err := s.InsertTips(ctx, []Tip{
		{UserID: u.ID, Username: u.Username, MatchID: "1", SelectedTeam: "Panthers"},
		{UserID: u.ID, Username: u.Username, MatchID: "2", SelectedTeam: "Broncos"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.InsertTips(ctx, []Tip{
		{UserID: u.ID, Username: u.Username, MatchID: "1", SelectedTeam: "Roosters"},
	})
	require.NoError(t, err)
	assert.Zero(t, n)

	tips, err := s.TipsForUser(ctx, u.ID, []string{"1", "2", "3"})
	require.NoError(t, err)
	require.Len(t, tips, 2)
	assert.Equal(t, "Panthers", tips[0].SelectedTeam)

	byMatch, err := s.TipsForMatches(ctx, []string{"2"})
	require.NoError(t, err)
	require.Len(t, byMatch, 1)
	assert.Equal(t, "bob", byMatch[0].Username)

	_, err = s.ReplaceTips(ctx, u.ID, []Tip{{Username: u.Username, MatchID: "1", SelectedTeam: "Roosters"}})
	require.NoError(t, err)
	tips, err = s.TipsForUser(ctx, u.ID, []string{"1"})
	require.NoError(t, err)
	require.Len(t, tips, 1)
	assert.Equal(t, "Roosters", tips[0].SelectedTeam)
}

func TestChatMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u, err := s.CreateUser(ctx, User{Username: "carol", Avatar: "carol.png"})
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = s.InsertChatMessage(ctx, ChatMessage{UserID: u.ID, RoundNumber: 1, Message: "second", Timestamp: base.Add(time.Minute)})
	require.NoError(t, err)
	_, err = s.InsertChatMessage(ctx, ChatMessage{UserID: u.ID, RoundNumber: 1, Message: "first", Timestamp: base})
	require.NoError(t, err)
	_, err = s.InsertChatMessage(ctx, ChatMessage{UserID: u.ID, RoundNumber: 2, Message: "other round"})
	require.NoError(t, err)

	msgs, err := s.ChatMessages(ctx, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Message)
	assert.Equal(t, "carol", msgs[0].Username)
	assert.Equal(t, "carol.png", msgs[0].Avatar)
}

func TestReportsAreUniquePerRound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u, err := s.CreateUser(ctx, User{Username: "dave"})
	require.NoError(t, err)

	_, err = s.FindReport(ctx, u.ID, "1", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := s.InsertReport(ctx, Report{UserID: u.ID, MatchID: "1", RoundNumber: 1, Report: "first"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.InsertReport(ctx, Report{UserID: u.ID, MatchID: "1", RoundNumber: 1, Report: "second"})
	require.NoError(t, err)
	assert.False(t, ok)

	r, err := s.FindReport(ctx, u.ID, "1", 1)
	require.NoError(t, err)
	assert.Equal(t, "first", r.Report)
}

func TestRefreshTipStatsAndClearUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	erin, err := s.CreateUser(ctx, User{Username: "erin"})
	require.NoError(t, err)
	finn, err := s.CreateUser(ctx, User{Username: "finn"})
	require.NoError(t, err)

	_, err = s.UpsertFixtures(ctx, []Fixture{
		{MatchID: "1", Round: 1, HomeTeam: "Panthers", AwayTeam: "Roosters", WinningTeam: ptr("Panthers")},
		{MatchID: "2", Round: 1, HomeTeam: "Broncos", AwayTeam: "Cowboys"},
	})
	require.NoError(t, err)
	_, err = s.InsertTips(ctx, []Tip{
		{UserID: erin.ID, Username: "erin", MatchID: "1", SelectedTeam: "Panthers"},
		{UserID: erin.ID, Username: "erin", MatchID: "2", SelectedTeam: "Broncos"},
		{UserID: finn.ID, Username: "finn", MatchID: "1", SelectedTeam: "Roosters"},
	})
	require.NoError(t, err)

	n, err := s.RefreshTipStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stats, err := s.TipStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "erin", stats[0].Username)
	assert.Equal(t, 1, stats[0].TotalTips)
	assert.Equal(t, 1, stats[0].CorrectTips)
	assert.Equal(t, 1, stats[1].TotalTips)
	assert.Equal(t, 0, stats[1].CorrectTips)

	cleared, err := s.ClearUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)
	tips, err := s.AllTips(ctx)
	require.NoError(t, err)
	assert.Empty(t, tips)
	fixtures, err := s.ListFixtures(ctx)
	require.NoError(t, err)
	assert.Len(t, fixtures, 2)
}
