// Package provider fetches the season draw and results from the public
// fixture feed.
//
// The feed is a JSON array with one object per match, published in the
// fixturedownload.com format. Rate limiting is handled via a token bucket
// limiter.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/albapepper/footy-tipping/internal/store"
)

// Draw is recorded as the result of a tied match.
const Draw = "Draw"

// Client is the HTTP client for the fixture feed.
type Client struct {
	httpClient *http.Client
	feedURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a feed client with rate limiting.
func NewClient(feedURL string, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if requestsPerMinute < 1 {
		requestsPerMinute = 30
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		feedURL:    feedURL,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// feedMatch is one entry of the feed.
type feedMatch struct {
	MatchNumber   int    `json:"MatchNumber"`
	RoundNumber   int    `json:"RoundNumber"`
	DateUtc       string `json:"DateUtc"`
	Location      string `json:"Location"`
	HomeTeam      string `json:"HomeTeam"`
	AwayTeam      string `json:"AwayTeam"`
	HomeTeamScore *int   `json:"HomeTeamScore"`
	AwayTeamScore *int   `json:"AwayTeamScore"`
}

// Fetch downloads the feed and converts it to fixtures.
func (c *Client) Fetch(ctx context.Context) ([]store.Fixture, error) {
	if c.feedURL == "" {
		return nil, fmt.Errorf("FIXTURES_FEED_URL is not set")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", c.feedURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fixture feed returned %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var matches []feedMatch
	if err := json.Unmarshal(body, &matches); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	fixtures := make([]store.Fixture, 0, len(matches))
	for _, m := range matches {
		f, err := m.fixture()
		if err != nil {
			c.logger.Warn("Skipping feed entry", "match", m.MatchNumber, "error", err)
			continue
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

func (m feedMatch) fixture() (store.Fixture, error) {
	if m.MatchNumber == 0 || m.RoundNumber == 0 {
		return store.Fixture{}, fmt.Errorf("missing match or round number")
	}
	f := store.Fixture{
		MatchID:  strconv.Itoa(m.MatchNumber),
		Round:    m.RoundNumber,
		HomeTeam: strings.TrimSpace(m.HomeTeam),
		AwayTeam: strings.TrimSpace(m.AwayTeam),
	}
	if m.DateUtc != "" {
		t, err := parseFeedTime(m.DateUtc)
		if err != nil {
			return store.Fixture{}, err
		}
		f.Kickoff = &t
	}
	if m.HomeTeamScore != nil && m.AwayTeamScore != nil {
		winner := Draw
		switch {
		case *m.HomeTeamScore > *m.AwayTeamScore:
			winner = f.HomeTeam
		case *m.AwayTeamScore > *m.HomeTeamScore:
			winner = f.AwayTeam
		}
		f.WinningTeam = &winner
	}
	return f, nil
}

func parseFeedTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05Z", time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised kickoff %q", s)
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
