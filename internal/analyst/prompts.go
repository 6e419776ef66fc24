package analyst

import (
	"encoding/json"
	"fmt"
	"strings"
)

// matchContext is the fixture as the agents see it.
type matchContext struct {
	competition string
	home        string
	away        string
	date        string
	kickoff     string
}

func (m matchContext) block() string {
	return fmt.Sprintf("Home team: %s.\nAway team: %s.\nDate: %s.\nKick-off: %s.", m.home, m.away, m.date, m.kickoff)
}

const mandatoryTopics = `Always cover, where available:
- TAB betting odds for both teams
- Key players ruled out (injury, suspension) and key players named
- Recent head-to-head and form statistics
- Expert commentators' predictions
- Predicted winning odds`

var searchPlanSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"searches": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"reason": {"type": "string", "description": "Why this search matters for the match."},
					"query": {"type": "string", "description": "The web search term."}
				},
				"required": ["reason", "query"],
				"additionalProperties": false
			}
		}
	},
	"required": ["searches"],
	"additionalProperties": false
}`)

var tipChoiceSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"choice": {"type": "string", "description": "Exact name of the tipped team."},
		"reason": {"type": "string", "description": "Two to four sentence justification."}
	},
	"required": ["choice", "reason"],
	"additionalProperties": false
}`)

func plannerInstructions(m matchContext, searchCount int, goal string) string {
	return fmt.Sprintf(`You are a %[1]s research assistant. %[2]s
Plan the web searches needed to get the latest relevant information on both teams.
Plan %[3]d searches for %[4]s and %[3]d searches for %[5]s.

%[6]s

%[7]s`, m.competition, goal, searchCount, m.home, m.away, m.block(), mandatoryTopics)
}

func searchInstructions(m matchContext) string {
	return fmt.Sprintf(`You are a %s footy tipping research assistant. Search the web for the given term and
summarise the results in 2-3 short paragraphs, under 300 words. Keep only the facts a
report writer needs; no commentary beyond the summary. Give both teams equal attention.

%s

%s`, m.competition, m.block(), mandatoryTopics)
}

func reportInstructions(m matchContext) string {
	return fmt.Sprintf(`You are an expert %[1]s analyst. Write an insightful pre-match report from the research
summaries. Weigh recent form, injuries, team news, venue, head-to-head trends, travel and
schedule. When information is missing make a best-effort judgment; never ask questions.

Readers are experienced punters who want clarity over long paragraphs. Put statistics on
their own lines, for example "TAB odds: Dragons $2.40, Tigers $1.30".

%[2]s

%[3]s

Use this markdown structure, omitting sections without data:
## Match Intelligence Report
### Match: %[4]s vs. %[5]s
**Date:**
**Kick-off Time:**
**Venue:**
---
### TAB Betting Odds
---
### Key Players Unavailable
---
### Key Players Available
---
### Recent Performance Stats
---
### Recent Form
---
### Commentators' Opinions
---
### Summary of Key Factors
---
### Conclusion
### Predicted Winning Odds
Punter recommendation:`, m.competition, m.block(), mandatoryTopics, m.home, m.away)
}

func pickerInstructions(m matchContext) string {
	return fmt.Sprintf(`You are an expert %s analyst. Choose the most likely winner of the match from the
research summaries. Weigh recent form, injuries, team news, venue, head-to-head trends,
travel and schedule. When information is missing make a best-effort judgment.

Return "choice" as exactly one of %q or %q, spelled and cased as given, and "reason"
as a 2-4 sentence justification grounded in the summaries.

%s`, m.competition, m.home, m.away, m.block())
}

func summariesPrompt(lead string, summaries []string) string {
	return lead + "\n\n" + strings.Join(summaries, "\n\n")
}
