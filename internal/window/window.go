// Package window decides when tips may be submitted and when other users'
// tips become visible.
//
// A round may carry a list of cutoff stages. Each stage names the matches
// that are due before its deadline; matches of later stages open once the
// earlier deadline passes. Independently, peers' tips for the current round
// stay hidden until a fixed weekly instant. All instants are evaluated in
// one anchor timezone so the server locale never matters.
package window

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/albapepper/footy-tipping/internal/config"
)

// Stage is one cutoff of a round.
type Stage struct {
	Deadline time.Time
	// MatchIDs are the matches due before Deadline. Nil means every match
	// not named by another stage of the round.
	MatchIDs []string
	// Label is shown to users; it defaults to the deadline in the anchor zone.
	Label string
}

// RoundWindow lists the cutoff stages of a round.
type RoundWindow struct {
	Round  int
	Stages []Stage
}

// Weekly is the weekly instant after which current-round tips are shared.
type Weekly struct {
	Weekday time.Weekday
	Hour    int
	Minute  int
}

// Label renders the instant as "5pm Thursday".
func (w Weekly) Label() string {
	t := time.Date(2000, 1, 1, w.Hour, w.Minute, 0, 0, time.UTC)
	return clock(t) + " " + w.Weekday.String()
}

// Config describes a season's windows.
type Config struct {
	Location *time.Location
	Rounds   []RoundWindow
	Weekly   Weekly
}

// Visibility is the set of matches whose peer tips may be shown, plus a
// user-facing message when some are withheld.
type Visibility struct {
	MatchIDs []string `json:"visible_match_ids"`
	Message  string   `json:"message,omitempty"`
}

// Policy answers window questions for a season.
type Policy struct {
	loc    *time.Location
	rounds map[int][]Stage
	weekly Weekly
}

// DefaultConfig is the 2026 season: round 1 opens in two stages, and peer
// tips unlock at 5pm Thursday every week.
func DefaultConfig(loc *time.Location) Config {
	if loc == nil {
		loc = defaultLocation()
	}
	return Config{
		Location: loc,
		Rounds: []RoundWindow{{
			Round: 1,
			Stages: []Stage{
				{Deadline: time.Date(2026, 2, 28, 17, 0, 0, 0, loc), MatchIDs: []string{"1", "2"}},
				{Deadline: time.Date(2026, 3, 5, 17, 0, 0, 0, loc)},
			},
		}},
		Weekly: Weekly{Weekday: time.Thursday, Hour: 17},
	}
}

// New builds a policy. Stages are ordered by deadline and unlabelled stages
// get a label derived from their deadline.
func New(cfg Config) *Policy {
	loc := cfg.Location
	if loc == nil {
		loc = defaultLocation()
	}
	p := &Policy{loc: loc, rounds: make(map[int][]Stage, len(cfg.Rounds)), weekly: cfg.Weekly}
	for _, rw := range cfg.Rounds {
		stages := append([]Stage(nil), rw.Stages...)
		sort.SliceStable(stages, func(i, j int) bool { return stages[i].Deadline.Before(stages[j].Deadline) })
		for i := range stages {
			if stages[i].Label == "" {
				stages[i].Label = FormatDeadline(stages[i].Deadline.In(loc))
			}
		}
		if len(stages) > 0 {
			p.rounds[rw.Round] = stages
		}
	}
	return p
}

func defaultLocation() *time.Location {
	loc, err := time.LoadLocation(config.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Location returns the anchor timezone.
func (p *Policy) Location() *time.Location { return p.loc }

// Stages returns the cutoff stages of a round, if any.
func (p *Policy) Stages(round int) []Stage { return p.rounds[round] }

// active returns the index of the first stage whose deadline is still
// ahead, or len(stages) once every deadline has passed.
func active(stages []Stage, now time.Time) int {
	for i, s := range stages {
		if now.Before(s.Deadline) {
			return i
		}
	}
	return len(stages)
}

// stageMatches returns the subset of matchIDs due in stage i.
func stageMatches(stages []Stage, i int, matchIDs []string) []string {
	if stages[i].MatchIDs != nil {
		return intersect(matchIDs, stages[i].MatchIDs)
	}
	claimed := make(map[string]bool)
	for j, s := range stages {
		if j == i {
			continue
		}
		for _, id := range s.MatchIDs {
			claimed[id] = true
		}
	}
	out := make([]string, 0, len(matchIDs))
	for _, id := range matchIDs {
		if !claimed[id] {
			out = append(out, id)
		}
	}
	return out
}

// Required returns the matches a user must tip right now. Rounds without
// stages require every match; once the final cutoff passes nothing is
// required because submissions are closed.
func (p *Policy) Required(round int, matchIDs []string, now time.Time) []string {
	stages := p.rounds[round]
	if len(stages) == 0 {
		return append([]string(nil), matchIDs...)
	}
	i := active(stages, now)
	if i == len(stages) {
		return nil
	}
	return stageMatches(stages, i, matchIDs)
}

// Closed reports whether tip submission for the round has ended. A round
// without stages never closes.
func (p *Policy) Closed(round int, now time.Time) bool {
	stages := p.rounds[round]
	return len(stages) > 0 && active(stages, now) == len(stages)
}

// NextCutoff returns the stage whose deadline is the next one to pass.
func (p *Policy) NextCutoff(round int, now time.Time) (Stage, bool) {
	stages := p.rounds[round]
	i := active(stages, now)
	if i == len(stages) {
		return Stage{}, false
	}
	return stages[i], true
}

// WeeklyPassed reports whether this week's sharing instant has passed.
// Weeks start on Monday in the anchor timezone.
func (p *Policy) WeeklyPassed(now time.Time) bool {
	local := now.In(p.loc)
	sinceMonday := (int(local.Weekday()) - int(time.Monday) + 7) % 7
	monday := time.Date(local.Year(), local.Month(), local.Day()-sinceMonday, 0, 0, 0, 0, p.loc)
	offset := (int(p.weekly.Weekday) - int(time.Monday) + 7) % 7
	instant := time.Date(monday.Year(), monday.Month(), monday.Day()+offset, p.weekly.Hour, p.weekly.Minute, 0, 0, p.loc)
	return !local.Before(instant)
}

// PeerVisible returns which of the selected round's matches may show other
// users' tips. Staged rounds reveal stage by stage and are fully visible
// after the final cutoff. Otherwise the current round stays hidden until
// the weekly instant and every other round is fully visible.
func (p *Policy) PeerVisible(currentRound, selectedRound int, matchIDs []string, now time.Time) Visibility {
	all := append([]string{}, matchIDs...)

	if stages := p.rounds[selectedRound]; len(stages) > 0 {
		i := active(stages, now)
		switch {
		case i == 0:
			return Visibility{MatchIDs: []string{}, Message: fmt.Sprintf("View others tips after %s.", stages[0].Label)}
		case i < len(stages):
			var visible []string
			for j := 0; j < i; j++ {
				visible = append(visible, stageMatches(stages, j, matchIDs)...)
			}
			visible = intersect(matchIDs, visible)
			return Visibility{
				MatchIDs: visible,
				Message:  fmt.Sprintf("Only matches %s visible until %s.", FormatMatchIDs(visible), stages[i].Label),
			}
		default:
			return Visibility{MatchIDs: all}
		}
	}

	if selectedRound == currentRound && !p.WeeklyPassed(now) {
		return Visibility{MatchIDs: []string{}, Message: fmt.Sprintf("View others tips after %s.", p.weekly.Label())}
	}
	return Visibility{MatchIDs: all}
}

// FormatDeadline renders an instant as "5pm Sat 28 Feb".
func FormatDeadline(t time.Time) string {
	return clock(t) + " " + t.Format("Mon 2 Jan")
}

func clock(t time.Time) string {
	if t.Minute() == 0 {
		return t.Format("3pm")
	}
	return t.Format("3:04pm")
}

// FormatMatchIDs renders a consecutive numeric run as "1-2" and anything
// else as a comma separated list.
func FormatMatchIDs(ids []string) string {
	if len(ids) < 2 {
		return strings.Join(ids, ", ")
	}
	nums := make([]int, len(ids))
	for i, id := range ids {
		n, err := strconv.Atoi(id)
		if err != nil || (i > 0 && n != nums[i-1]+1) {
			return strings.Join(ids, ", ")
		}
		nums[i] = n
	}
	return ids[0] + "-" + ids[len(ids)-1]
}

// intersect keeps the ids of all that appear in want, in the order of all.
func intersect(all, want []string) []string {
	set := make(map[string]bool, len(want))
	for _, id := range want {
		set[id] = true
	}
	out := make([]string, 0, len(want))
	for _, id := range all {
		if set[id] {
			out = append(out, id)
		}
	}
	return out
}

