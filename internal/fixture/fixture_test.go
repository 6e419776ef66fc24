package fixture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/albapepper/footy-tipping/internal/store"
)

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func winner(team string) *string { return &team }

func TestCurrentRoundNoFixtures(t *testing.T) {
	_, ok := CurrentRound(nil, time.Now())
	assert.False(t, ok)
}

func TestCurrentRoundLowestUnplayed(t *testing.T) {
	fixtures := []store.Fixture{
		{MatchID: "1", Round: 1, Kickoff: at("2026-03-05T09:00:00Z")},
		{MatchID: "2", Round: 1, Kickoff: at("2026-03-06T09:00:00Z")},
		{MatchID: "9", Round: 2, Kickoff: at("2026-03-12T09:00:00Z")},
	}

	round, ok := CurrentRound(fixtures, *at("2026-03-01T00:00:00Z"))
	assert.True(t, ok)
	assert.Equal(t, 1, round)

	// Match 2 kicked off but is still within its playing window.
	round, _ = CurrentRound(fixtures, *at("2026-03-06T10:00:00Z"))
	assert.Equal(t, 1, round)

	round, _ = CurrentRound(fixtures, *at("2026-03-06T11:00:00Z"))
	assert.Equal(t, 2, round)
}

func TestCurrentRoundResultsCountAsPlayed(t *testing.T) {
	fixtures := []store.Fixture{
		{MatchID: "1", Round: 1, Kickoff: at("2026-03-05T09:00:00Z"), WinningTeam: winner("Storm")},
		{MatchID: "9", Round: 2, Kickoff: at("2026-03-12T09:00:00Z")},
	}
	round, _ := CurrentRound(fixtures, *at("2026-03-05T09:30:00Z"))
	assert.Equal(t, 2, round)
}

func TestCurrentRoundUnknownKickoffIsUnplayed(t *testing.T) {
	fixtures := []store.Fixture{
		{MatchID: "1", Round: 1, Kickoff: at("2026-03-05T09:00:00Z")},
		{MatchID: "9", Round: 2},
		{MatchID: "17", Round: 3},
	}
	round, _ := CurrentRound(fixtures, *at("2026-04-01T00:00:00Z"))
	assert.Equal(t, 2, round)
}

func TestCurrentRoundSeasonOverStaysOnLastRound(t *testing.T) {
	fixtures := []store.Fixture{
		{MatchID: "9", Round: 2, WinningTeam: winner("Eels")},
		{MatchID: "1", Round: 1, WinningTeam: winner("Storm")},
	}
	round, ok := CurrentRound(fixtures, time.Now())
	assert.True(t, ok)
	assert.Equal(t, 2, round)
}

func TestInRoundAndMatchIDs(t *testing.T) {
	fixtures := []store.Fixture{
		{MatchID: "1", Round: 1},
		{MatchID: "9", Round: 2},
		{MatchID: "2", Round: 1},
	}
	assert.Equal(t, []string{"1", "2"}, MatchIDs(InRound(fixtures, 1)))
	assert.Empty(t, InRound(fixtures, 7))
}

func TestSummary(t *testing.T) {
	f := store.Fixture{MatchID: "3", Round: 1, HomeTeam: "Storm", AwayTeam: "Eels"}
	assert.Equal(t, "match=3 round=1 Storm v Eels kickoff=TBD result=pending", Summary(f))
}
