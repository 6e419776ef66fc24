package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var round1Matches = []string{"1", "2", "3", "4"}

func sydney(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)
	return loc
}

func TestRound1SubmissionStages(t *testing.T) {
	loc := sydney(t)
	p := New(DefaultConfig(loc))

	early := time.Date(2026, 2, 27, 10, 0, 0, 0, loc)
	assert.Equal(t, []string{"1", "2"}, p.Required(1, round1Matches, early))
	assert.False(t, p.Closed(1, early))

	middle := time.Date(2026, 3, 1, 10, 0, 0, 0, loc)
	assert.Equal(t, []string{"3", "4"}, p.Required(1, round1Matches, middle))
	assert.False(t, p.Closed(1, middle))

	late := time.Date(2026, 3, 6, 10, 0, 0, 0, loc)
	assert.Empty(t, p.Required(1, round1Matches, late))
	assert.True(t, p.Closed(1, late))
}

func TestCutoffIsAnchoredToSydney(t *testing.T) {
	p := New(DefaultConfig(sydney(t)))

	// 2026-02-28 17:00 AEDT is 06:00 UTC.
	justBefore := time.Date(2026, 2, 28, 5, 59, 59, 0, time.UTC)
	atCutoff := time.Date(2026, 2, 28, 6, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"1", "2"}, p.Required(1, round1Matches, justBefore))
	assert.Equal(t, []string{"3", "4"}, p.Required(1, round1Matches, atCutoff))
}

func TestRoundWithoutStagesNeverCloses(t *testing.T) {
	p := New(DefaultConfig(sydney(t)))
	ids := []string{"9", "10"}
	now := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, ids, p.Required(2, ids, now))
	assert.False(t, p.Closed(2, now))
	_, ok := p.NextCutoff(2, now)
	assert.False(t, ok)
}

func TestNextCutoff(t *testing.T) {
	loc := sydney(t)
	p := New(DefaultConfig(loc))

	st, ok := p.NextCutoff(1, time.Date(2026, 3, 1, 10, 0, 0, 0, loc))
	require.True(t, ok)
	assert.Equal(t, "5pm Thu 5 Mar", st.Label)
}

func TestRound1PeerVisibility(t *testing.T) {
	loc := sydney(t)
	p := New(DefaultConfig(loc))

	v := p.PeerVisible(1, 1, round1Matches, time.Date(2026, 2, 27, 10, 0, 0, 0, loc))
	assert.Empty(t, v.MatchIDs)
	assert.Equal(t, "View others tips after 5pm Sat 28 Feb.", v.Message)

	v = p.PeerVisible(1, 1, round1Matches, time.Date(2026, 3, 1, 10, 0, 0, 0, loc))
	assert.Equal(t, []string{"1", "2"}, v.MatchIDs)
	assert.Equal(t, "Only matches 1-2 visible until 5pm Thu 5 Mar.", v.Message)

	v = p.PeerVisible(1, 1, round1Matches, time.Date(2026, 3, 6, 10, 0, 0, 0, loc))
	assert.Equal(t, round1Matches, v.MatchIDs)
	assert.Empty(t, v.Message)
}

func TestWeeklyRuleHidesCurrentRound(t *testing.T) {
	loc := sydney(t)
	p := New(DefaultConfig(loc))
	ids := []string{"9", "10"}

	// Wednesday 11 March 2026.
	wednesday := time.Date(2026, 3, 11, 12, 0, 0, 0, loc)
	v := p.PeerVisible(2, 2, ids, wednesday)
	assert.Empty(t, v.MatchIDs)
	assert.Equal(t, "View others tips after 5pm Thursday.", v.Message)

	thursday := time.Date(2026, 3, 12, 17, 0, 0, 0, loc)
	v = p.PeerVisible(2, 2, ids, thursday)
	assert.Equal(t, ids, v.MatchIDs)
	assert.Empty(t, v.Message)

	// Past rounds are visible regardless of the weekly instant.
	v = p.PeerVisible(3, 2, ids, wednesday)
	assert.Equal(t, ids, v.MatchIDs)
}

func TestWeeklyPassed(t *testing.T) {
	loc := sydney(t)
	p := New(DefaultConfig(loc))

	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"monday", time.Date(2026, 3, 9, 0, 0, 0, 0, loc), false},
		{"thursday before", time.Date(2026, 3, 12, 16, 59, 0, 0, loc), false},
		{"thursday at", time.Date(2026, 3, 12, 17, 0, 0, 0, loc), true},
		{"sunday", time.Date(2026, 3, 15, 23, 0, 0, 0, loc), true},
		// Thursday 07:00 UTC is already 18:00 in Sydney.
		{"utc input", time.Date(2026, 3, 12, 7, 0, 0, 0, time.UTC), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, p.WeeklyPassed(tc.at))
		})
	}
}

func TestCustomStagesAndLabels(t *testing.T) {
	loc := sydney(t)
	p := New(Config{
		Location: loc,
		Rounds: []RoundWindow{{
			Round: 5,
			Stages: []Stage{
				{Deadline: time.Date(2026, 4, 10, 19, 30, 0, 0, loc)},
				{Deadline: time.Date(2026, 4, 9, 19, 30, 0, 0, loc), MatchIDs: []string{"33", "35"}, Label: "Thursday night"},
			},
		}},
		Weekly: Weekly{Weekday: time.Friday, Hour: 9, Minute: 15},
	})

	ids := []string{"33", "34", "35"}
	before := time.Date(2026, 4, 9, 12, 0, 0, 0, loc)
	assert.Equal(t, []string{"33", "35"}, p.Required(5, ids, before))
	assert.Equal(t, "View others tips after Thursday night.", p.PeerVisible(5, 5, ids, before).Message)

	between := time.Date(2026, 4, 10, 12, 0, 0, 0, loc)
	assert.Equal(t, []string{"34"}, p.Required(5, ids, between))
	v := p.PeerVisible(5, 5, ids, between)
	assert.Equal(t, []string{"33", "35"}, v.MatchIDs)
	assert.Equal(t, "Only matches 33, 35 visible until 7:30pm Fri 10 Apr.", v.Message)

	assert.Equal(t, "9:15am Friday", Weekly{Weekday: time.Friday, Hour: 9, Minute: 15}.Label())
}

func TestFormatMatchIDs(t *testing.T) {
	assert.Equal(t, "1-2", FormatMatchIDs([]string{"1", "2"}))
	assert.Equal(t, "3-5", FormatMatchIDs([]string{"3", "4", "5"}))
	assert.Equal(t, "1, 3", FormatMatchIDs([]string{"1", "3"}))
	assert.Equal(t, "7", FormatMatchIDs([]string{"7"}))
	assert.Equal(t, "a, b", FormatMatchIDs([]string{"a", "b"}))
}
