// Package tips implements tip submission, peer viewing and the operator
// batch jobs that act on tips (auto-assign, export, stats).
package tips

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/albapepper/footy-tipping/internal/fixture"
	"github.com/albapepper/footy-tipping/internal/store"
	"github.com/albapepper/footy-tipping/internal/validate"
	"github.com/albapepper/footy-tipping/internal/window"
)

var (
	// ErrNoRound means there are no fixtures, so no round is active.
	ErrNoRound = errors.New("no active round")
	// ErrClosed means the final cutoff for the round has passed.
	ErrClosed = errors.New("tips are closed for this round")
	// ErrAlreadySubmitted means every currently required match is tipped.
	ErrAlreadySubmitted = errors.New("tips already submitted")
	// ErrMatchNotOpen means a selection targets a match outside the
	// currently required set.
	ErrMatchNotOpen = errors.New("match is not open for tipping")
	// ErrMissingSelection means a required match has no selection.
	ErrMissingSelection = errors.New("missing selection")
	// ErrInvalidTeam means the selected team is not playing in the match.
	ErrInvalidTeam = errors.New("invalid team")
)

// Store is the persistence the service needs.
type Store interface {
	ListFixtures(ctx context.Context) ([]store.Fixture, error)
	ListUsers(ctx context.Context) ([]store.User, error)
	TipsForUser(ctx context.Context, userID int64, matchIDs []string) ([]store.Tip, error)
	TipsForMatches(ctx context.Context, matchIDs []string) ([]store.Tip, error)
	AllTips(ctx context.Context) ([]store.Tip, error)
	InsertTips(ctx context.Context, tips []store.Tip) (int, error)
	RefreshTipStats(ctx context.Context) (int, error)
}

// Service applies the visibility window policy to tip reads and writes.
type Service struct {
	store    Store
	policy   *window.Policy
	validate *validator.Validate
	now      func() time.Time
	logger   *slog.Logger
}

// NewService creates a tips service. A nil now uses time.Now.
func NewService(s Store, policy *window.Policy, now func() time.Time, logger *slog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: s, policy: policy, validate: validate.New(), now: now, logger: logger}
}

// Round is the resolved current round with its fixtures.
type Round struct {
	Number   int             `json:"round_number"`
	Fixtures []store.Fixture `json:"fixtures"`
}

// CurrentRound resolves the active round. ErrNoRound when there are no
// fixtures.
func (s *Service) CurrentRound(ctx context.Context) (Round, error) {
	all, err := s.store.ListFixtures(ctx)
	if err != nil {
		return Round{}, fmt.Errorf("list fixtures: %w", err)
	}
	return current(all, s.now())
}

func current(all []store.Fixture, now time.Time) (Round, error) {
	n, ok := fixture.CurrentRound(all, now)
	if !ok {
		return Round{}, ErrNoRound
	}
	return Round{Number: n, Fixtures: fixture.InRound(all, n)}, nil
}

// Form is what a user needs to fill in their tips.
type Form struct {
	Round        int             `json:"round_number"`
	Fixtures     []store.Fixture `json:"fixtures"`
	Submitted    []store.Tip     `json:"submitted_tips"`
	HasSubmitted bool            `json:"has_submitted"`
	Closed       bool            `json:"closed"`
	NextCutoff   *time.Time      `json:"next_cutoff,omitempty"`
	CutoffLabel  string          `json:"cutoff_label,omitempty"`
}

// Form returns the fixtures the user must tip right now and the tips they
// already hold for the round.
func (s *Service) Form(ctx context.Context, user store.User) (Form, error) {
	now := s.now()
	round, err := s.CurrentRound(ctx)
	if err != nil {
		return Form{}, err
	}

	ids := fixture.MatchIDs(round.Fixtures)
	existing, err := s.store.TipsForUser(ctx, user.ID, ids)
	if err != nil {
		return Form{}, err
	}

	required := s.policy.Required(round.Number, ids, now)
	form := Form{
		Round:        round.Number,
		Fixtures:     pick(round.Fixtures, required),
		Submitted:    existing,
		HasSubmitted: covered(required, existing),
		Closed:       s.policy.Closed(round.Number, now),
	}
	if form.Submitted == nil {
		form.Submitted = []store.Tip{}
	}
	if stage, ok := s.policy.NextCutoff(round.Number, now); ok {
		deadline := stage.Deadline
		form.NextCutoff = &deadline
		form.CutoffLabel = stage.Label
	}
	return form, nil
}

// Submission is the body of a tip submission: match id to selected team.
type Submission struct {
	Selections map[string]string `json:"selections" validate:"required,min=1,dive,keys,required,max=20,endkeys,required,max=100"`
}

// Submit validates and stores the user's tips for the currently required
// matches. Tips are immutable, so matches already tipped are skipped.
func (s *Service) Submit(ctx context.Context, user store.User, sub Submission) (int, error) {
	if err := s.validate.Struct(sub); err != nil {
		return 0, err
	}

	now := s.now()
	round, err := s.CurrentRound(ctx)
	if err != nil {
		return 0, err
	}
	if s.policy.Closed(round.Number, now) {
		return 0, ErrClosed
	}

	ids := fixture.MatchIDs(round.Fixtures)
	required := s.policy.Required(round.Number, ids, now)
	existing, err := s.store.TipsForUser(ctx, user.ID, ids)
	if err != nil {
		return 0, err
	}
	if covered(required, existing) {
		return 0, ErrAlreadySubmitted
	}

	for matchID := range sub.Selections {
		if !slices.Contains(required, matchID) {
			return 0, fmt.Errorf("%w: match %s", ErrMatchNotOpen, matchID)
		}
	}

	tipped := make(map[string]bool, len(existing))
	for _, t := range existing {
		tipped[t.MatchID] = true
	}
	var tips []store.Tip
	for _, f := range pick(round.Fixtures, required) {
		if tipped[f.MatchID] {
			continue
		}
		team, ok := sub.Selections[f.MatchID]
		if !ok {
			return 0, fmt.Errorf("%w: match %s", ErrMissingSelection, f.MatchID)
		}
		if !f.HasTeam(team) {
			return 0, fmt.Errorf("%w: %q is not playing in match %s", ErrInvalidTeam, team, f.MatchID)
		}
		tips = append(tips, store.Tip{UserID: user.ID, Username: user.Username, MatchID: f.MatchID, SelectedTeam: team})
	}

	n, err := s.store.InsertTips(ctx, tips)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Tips submitted", "user", user.Username, "round", round.Number, "inserted", n)
	return n, nil
}

// RoundView is the peer tips page for one round.
type RoundView struct {
	Round           int               `json:"round_number"`
	CurrentRound    int               `json:"current_round"`
	Rounds          []int             `json:"rounds"`
	Fixtures        []store.Fixture   `json:"fixtures"`
	Tips            []store.Tip       `json:"tips"`
	Results         map[string]string `json:"results"`
	VisibleMatchIDs []string          `json:"visible_match_ids"`
	Message         string            `json:"message,omitempty"`
}

// View returns the tips of a round as the viewer may see them. Round 0
// selects the current round. The viewer's own tips are always included;
// other users' tips only for peer-visible matches.
func (s *Service) View(ctx context.Context, viewer store.User, round int) (RoundView, error) {
	now := s.now()
	all, err := s.store.ListFixtures(ctx)
	if err != nil {
		return RoundView{}, fmt.Errorf("list fixtures: %w", err)
	}
	cur, err := current(all, now)
	if err != nil {
		return RoundView{}, err
	}
	if round == 0 {
		round = cur.Number
	}
	fixtures := fixture.InRound(all, round)
	if len(fixtures) == 0 {
		return RoundView{}, fmt.Errorf("round %d: %w", round, store.ErrNotFound)
	}

	ids := fixture.MatchIDs(fixtures)
	vis := s.policy.PeerVisible(cur.Number, round, ids, now)
	visible := make(map[string]bool, len(vis.MatchIDs))
	for _, id := range vis.MatchIDs {
		visible[id] = true
	}

	tips, err := s.store.TipsForMatches(ctx, ids)
	if err != nil {
		return RoundView{}, err
	}
	shown := make([]store.Tip, 0, len(tips))
	for _, t := range tips {
		if t.UserID == viewer.ID || visible[t.MatchID] {
			shown = append(shown, t)
		}
	}

	view := RoundView{
		Round:           round,
		CurrentRound:    cur.Number,
		Rounds:          rounds(all),
		Fixtures:        pick(fixtures, vis.MatchIDs),
		Tips:            shown,
		Results:         make(map[string]string),
		VisibleMatchIDs: vis.MatchIDs,
		Message:         vis.Message,
	}
	for _, f := range fixtures {
		if f.WinningTeam != nil {
			view.Results[f.MatchID] = *f.WinningTeam
		}
	}
	return view, nil
}

// AssignResult tracks the outcome of an auto-assign run.
type AssignResult struct {
	Round    int
	Users    int
	Matches  int
	Assigned int
}

// Summary returns a human-readable summary.
func (r AssignResult) Summary() string {
	return fmt.Sprintf("round=%d users=%d matches=%d assigned=%d", r.Round, r.Users, r.Matches, r.Assigned)
}

// AutoAssign gives every user without a tip the away team for the current
// round's matches, or only for matchIDs when given.
func (s *Service) AutoAssign(ctx context.Context, matchIDs []string) (AssignResult, error) {
	round, err := s.CurrentRound(ctx)
	if err != nil {
		return AssignResult{}, err
	}
	targets := round.Fixtures
	if len(matchIDs) > 0 {
		targets = pick(round.Fixtures, matchIDs)
	}
	result := AssignResult{Round: round.Number, Matches: len(targets)}
	if len(targets) == 0 {
		return result, nil
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return result, err
	}
	result.Users = len(users)

	existing, err := s.store.TipsForMatches(ctx, fixture.MatchIDs(targets))
	if err != nil {
		return result, err
	}
	have := make(map[string]bool, len(existing))
	for _, t := range existing {
		have[tipKey(t.UserID, t.MatchID)] = true
	}

	var missing []store.Tip
	for _, u := range users {
		for _, f := range targets {
			if have[tipKey(u.ID, f.MatchID)] {
				continue
			}
			missing = append(missing, store.Tip{UserID: u.ID, Username: u.Username, MatchID: f.MatchID, SelectedTeam: f.AwayTeam})
		}
	}

	result.Assigned, err = s.store.InsertTips(ctx, missing)
	if err != nil {
		return result, err
	}
	s.logger.Info("Auto-assign complete", "summary", result.Summary())
	return result, nil
}

// ExportCSV writes every tip as CSV and returns the number of rows.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	all, err := s.store.AllTips(ctx)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "match", "selected_team", "user_id", "username", "date"}); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	for _, t := range all {
		row := []string{
			strconv.FormatInt(t.ID, 10),
			t.MatchID,
			t.SelectedTeam,
			strconv.FormatInt(t.UserID, 10),
			t.Username,
			t.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return 0, fmt.Errorf("write tip %d: %w", t.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}
	return len(all), nil
}

// UpdateStats recomputes every user's tip tally.
func (s *Service) UpdateStats(ctx context.Context) (int, error) {
	n, err := s.store.RefreshTipStats(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Tip stats updated", "users", n)
	return n, nil
}

// covered reports whether every id in required has a tip. An empty required
// set is never covered.
func covered(required []string, tips []store.Tip) bool {
	if len(required) == 0 {
		return false
	}
	have := make(map[string]bool, len(tips))
	for _, t := range tips {
		have[t.MatchID] = true
	}
	for _, id := range required {
		if !have[id] {
			return false
		}
	}
	return true
}

// pick keeps the fixtures whose match id is in ids, in fixture order.
func pick(fixtures []store.Fixture, ids []string) []store.Fixture {
	out := make([]store.Fixture, 0, len(ids))
	for _, f := range fixtures {
		if slices.Contains(ids, f.MatchID) {
			out = append(out, f)
		}
	}
	return out
}

func rounds(fixtures []store.Fixture) []int {
	var out []int
	for _, f := range fixtures {
		if !slices.Contains(out, f.Round) {
			out = append(out, f.Round)
		}
	}
	slices.Sort(out)
	return out
}

func tipKey(userID int64, matchID string) string {
	return strconv.FormatInt(userID, 10) + ":" + matchID
}
