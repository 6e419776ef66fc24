package analyst

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/albapepper/footy-tipping/internal/store"
)

// ErrNoResearch is returned when every planned search failed.
var ErrNoResearch = errors.New("analyst: no search produced a summary")

// Options tune the pipeline.
type Options struct {
	Competition string
	SearchCount int
	// Location renders kickoff times for the agents.
	Location *time.Location
}

// Analyst runs the planner, search and analyst stages.
type Analyst struct {
	client      *Client
	competition string
	searchCount int
	loc         *time.Location
	logger      *slog.Logger
}

// Choice is a tipperbot pick.
type Choice struct {
	Team   string `json:"choice"`
	Reason string `json:"reason"`
}

type searchPlan struct {
	Searches []struct {
		Reason string `json:"reason"`
		Query  string `json:"query"`
	} `json:"searches"`
}

// New creates an Analyst on top of client.
func New(client *Client, opts Options, logger *slog.Logger) *Analyst {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SearchCount < 1 {
		opts.SearchCount = 10
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Competition == "" {
		opts.Competition = "rugby league"
	}
	return &Analyst{
		client:      client,
		competition: opts.Competition,
		searchCount: opts.SearchCount,
		loc:         opts.Location,
		logger:      logger,
	}
}

// Enabled reports whether the remote API is configured.
func (a *Analyst) Enabled() bool { return a.client.Enabled() }

func (a *Analyst) matchFor(f store.Fixture) matchContext {
	m := matchContext{
		competition: a.competition,
		home:        orTBD(f.HomeTeam),
		away:        orTBD(f.AwayTeam),
		date:        "TBD",
		kickoff:     "TBD",
	}
	if f.Kickoff != nil {
		local := f.Kickoff.In(a.loc)
		m.date = local.Format("2006-01-02")
		m.kickoff = local.Format("15:04 MST")
	}
	return m
}

// Generate writes a markdown match intelligence report for f.
func (a *Analyst) Generate(ctx context.Context, f store.Fixture) (string, error) {
	m := a.matchFor(f)
	summaries, err := a.research(ctx, m, "You specialise in the latest team statistics needed for a detailed match analysis report.")
	if err != nil {
		return "", err
	}
	report, err := a.client.respond(ctx, call{
		instructions: reportInstructions(m),
		input:        summariesPrompt("Use the research summaries below to write the analysis report.", summaries),
	})
	if err != nil {
		return "", fmt.Errorf("analyst stage: %w", err)
	}
	return strings.TrimSpace(report), nil
}

// Pick chooses a winner for f. The returned team is always one of the
// fixture's two sides.
func (a *Analyst) Pick(ctx context.Context, f store.Fixture) (Choice, error) {
	m := a.matchFor(f)
	summaries, err := a.research(ctx, m, "You specialise in picking winners in the weekly tipping competition.")
	if err != nil {
		return Choice{}, err
	}
	raw, err := a.client.respond(ctx, call{
		instructions: pickerInstructions(m),
		input:        summariesPrompt("Use the research summaries below to pick the winner.", summaries),
		schemaName:   "tip_choice",
		schema:       tipChoiceSchema,
	})
	if err != nil {
		return Choice{}, fmt.Errorf("picker stage: %w", err)
	}

	var c Choice
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Choice{}, fmt.Errorf("decode tip choice: %w", err)
	}
	team, ok := matchTeam(f, c.Team)
	if !ok {
		return Choice{}, fmt.Errorf("tip choice %q is not %q or %q", c.Team, f.HomeTeam, f.AwayTeam)
	}
	c.Team = team
	return c, nil
}

// research plans the searches and summarises each one. Individual search
// failures are logged and skipped.
func (a *Analyst) research(ctx context.Context, m matchContext, goal string) ([]string, error) {
	raw, err := a.client.respond(ctx, call{
		instructions: plannerInstructions(m, a.searchCount, goal),
		input:        "Create a web search plan for the upcoming match.",
		schemaName:   "web_search_plan",
		schema:       searchPlanSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("planner stage: %w", err)
	}

	var plan searchPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, fmt.Errorf("decode search plan: %w", err)
	}
	if len(plan.Searches) == 0 {
		return nil, errors.New("planner returned no searches")
	}
	if limit := 2 * a.searchCount; len(plan.Searches) > limit {
		plan.Searches = plan.Searches[:limit]
	}

	a.logger.Info("Search plan ready", "home", m.home, "away", m.away, "searches", len(plan.Searches))

	var summaries []string
	for i, item := range plan.Searches {
		summary, err := a.client.respond(ctx, call{
			instructions: searchInstructions(m),
			input:        item.Query,
			webSearch:    true,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.logger.Warn("Search failed", "query", item.Query, "error", err)
			continue
		}
		summaries = append(summaries, fmt.Sprintf("[Search %d] %s\nReason: %s\nSummary: %s",
			i+1, item.Query, item.Reason, strings.TrimSpace(summary)))
	}
	if len(summaries) == 0 {
		return nil, ErrNoResearch
	}
	return summaries, nil
}

func matchTeam(f store.Fixture, choice string) (string, bool) {
	choice = strings.TrimSpace(choice)
	for _, team := range []string{f.HomeTeam, f.AwayTeam} {
		if team != "" && strings.EqualFold(team, choice) {
			return team, true
		}
	}
	return "", false
}

func orTBD(s string) string {
	if strings.TrimSpace(s) == "" {
		return "TBD"
	}
	return s
}
