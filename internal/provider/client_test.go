package provider

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feed = `[
  {"MatchNumber":1,"RoundNumber":1,"DateUtc":"2026-03-01 04:00:00Z","Location":"Allegiant Stadium","HomeTeam":"Knights","AwayTeam":"Cowboys","HomeTeamScore":28,"AwayTeamScore":18},
  {"MatchNumber":2,"RoundNumber":1,"DateUtc":"2026-03-01 06:30:00Z","HomeTeam":"Bulldogs","AwayTeam":"Dragons","HomeTeamScore":12,"AwayTeamScore":12},
  {"MatchNumber":9,"RoundNumber":2,"DateUtc":"2026-03-12 09:00:00Z","HomeTeam":"Storm","AwayTeam":"Eels","HomeTeamScore":null,"AwayTeamScore":null},
  {"MatchNumber":0,"RoundNumber":2,"HomeTeam":"Bad","AwayTeam":"Row"},
  {"MatchNumber":10,"RoundNumber":2,"DateUtc":"","HomeTeam":"Sharks","AwayTeam":"Raiders"}
]`

func TestFetchConvertsFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, feed)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 600, slog.New(slog.NewTextHandler(io.Discard, nil)))
	fixtures, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, fixtures, 4)

	first := fixtures[0]
	assert.Equal(t, "1", first.MatchID)
	assert.Equal(t, 1, first.Round)
	require.NotNil(t, first.Kickoff)
	assert.True(t, first.Kickoff.Equal(time.Date(2026, 3, 1, 4, 0, 0, 0, time.UTC)))
	require.NotNil(t, first.WinningTeam)
	assert.Equal(t, "Knights", *first.WinningTeam)

	require.NotNil(t, fixtures[1].WinningTeam)
	assert.Equal(t, Draw, *fixtures[1].WinningTeam)
	assert.Nil(t, fixtures[2].WinningTeam)
	assert.Nil(t, fixtures[3].Kickoff)
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 600, nil).Fetch(context.Background())
	assert.ErrorContains(t, err, "returned 410")

	_, err = NewClient("", 600, nil).Fetch(context.Background())
	assert.ErrorContains(t, err, "FIXTURES_FEED_URL")
}
