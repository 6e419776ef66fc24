// Package store persists users, fixtures, tips, chat messages and cached
// match reports. One SQL implementation serves both Postgres (pgx) and the
// SQLite fallback used for local development and tests.
package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// User is a registered tipster.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Name      *string   `json:"name,omitempty"`
	Avatar    string    `json:"avatar"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Fixture is a single scheduled match. Only WinningTeam changes after the
// row is first created.
type Fixture struct {
	MatchID     string     `json:"match_id"`
	Round       int        `json:"round"`
	HomeTeam    string     `json:"home_team"`
	AwayTeam    string     `json:"away_team"`
	Kickoff     *time.Time `json:"kickoff,omitempty"`
	WinningTeam *string    `json:"winning_team,omitempty"`
}

// HasTeam reports whether team is one of the two sides of the fixture.
func (f Fixture) HasTeam(team string) bool {
	return team != "" && (team == f.HomeTeam || team == f.AwayTeam)
}

// Tip is one user's pick for one match.
type Tip struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Username     string    `json:"username"`
	MatchID      string    `json:"match_id"`
	SelectedTeam string    `json:"selected_team"`
	CreatedAt    time.Time `json:"created_at"`
}

// ChatMessage is an append-only round chat line.
type ChatMessage struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username"`
	Avatar      string    `json:"avatar"`
	RoundNumber int       `json:"round_number"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

// Report is a durable copy of a completed match intelligence report.
type Report struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	MatchID     string    `json:"match_id"`
	RoundNumber int       `json:"round_number"`
	Report      string    `json:"report"`
	CreatedAt   time.Time `json:"created_at"`
}

// TipStats is the per-user tally maintained by the stats job.
type TipStats struct {
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username"`
	TotalTips   int       `json:"total_tips"`
	CorrectTips int       `json:"correct_tips"`
	UpdatedAt   time.Time `json:"updated_at"`
}
