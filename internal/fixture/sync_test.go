package fixture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/footy-tipping/internal/store"
)

type staticSource struct {
	fixtures []store.Fixture
	err      error
}

func (s staticSource) Fetch(context.Context) ([]store.Fixture, error) { return s.fixtures, s.err }

type recordingUpserter struct{ got []store.Fixture }

func (r *recordingUpserter) UpsertFixtures(_ context.Context, f []store.Fixture) (int, error) {
	r.got = append(r.got, f...)
	return len(f), nil
}

func TestSync(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	src := staticSource{fixtures: []store.Fixture{
		{MatchID: "1", Round: 1, WinningTeam: winner("Storm")},
		{MatchID: "2", Round: 1},
	}}
	dst := &recordingUpserter{}

	res, err := Sync(context.Background(), src, dst, logger)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Fetched)
	assert.Equal(t, 2, res.Upserted)
	assert.Equal(t, 1, res.Results)
	assert.Len(t, dst.got, 2)

	_, err = Sync(context.Background(), staticSource{err: errors.New("timeout")}, dst, logger)
	assert.ErrorContains(t, err, "fetch fixtures: timeout")
}
