package chat

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/footy-tipping/internal/store"
)

func newStore(t *testing.T) *store.SQLStore {
	t.Helper()
	ctx := context.Background()
	s, err := store.OpenSQLite(ctx, filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestChatRequiresRound(t *testing.T) {
	svc := NewService(newStore(t), nil, nil)
	ctx := context.Background()

	_, _, err := svc.Messages(ctx, 0)
	assert.ErrorIs(t, err, ErrNoRound)
	_, err = svc.Send(ctx, store.User{ID: 1}, Post{Message: "hello"})
	assert.ErrorIs(t, err, ErrNoRound)
}

func TestChatPostAndList(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	kick := time.Date(2026, 3, 13, 8, 0, 0, 0, time.UTC)
	_, err := s.UpsertFixtures(ctx, []store.Fixture{{MatchID: "9", Round: 2, HomeTeam: "Storm", AwayTeam: "Sharks", Kickoff: &kick}})
	require.NoError(t, err)
	user, err := s.CreateUser(ctx, store.User{Username: "alice"})
	require.NoError(t, err)

	now := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	svc := NewService(s, func() time.Time { return now }, nil)

	msg, err := svc.Send(ctx, user, Post{Message: "  Storm by 12  "})
	require.NoError(t, err)
	assert.Equal(t, 2, msg.RoundNumber)
	assert.Equal(t, "Storm by 12", msg.Message)
	assert.Equal(t, "alice", msg.Username)

	_, err = svc.Send(ctx, user, Post{RoundNumber: 1, Message: "late to round 1"})
	require.NoError(t, err)

	round, msgs, err := svc.Messages(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, round)
	require.Len(t, msgs, 1)
	assert.Equal(t, "default.jpg", msgs[0].Avatar)
	assert.True(t, msgs[0].Timestamp.Equal(now))

	_, msgs, err = svc.Messages(ctx, 5)
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
}

func TestChatRejectsBadMessages(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, err := s.UpsertFixtures(ctx, []store.Fixture{{MatchID: "1", Round: 1, HomeTeam: "Storm", AwayTeam: "Eels"}})
	require.NoError(t, err)
	svc := NewService(s, nil, nil)

	_, err = svc.Send(ctx, store.User{ID: 1}, Post{Message: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = svc.Send(ctx, store.User{ID: 1}, Post{Message: "<script>alert(1)</script>"})
	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))
}
