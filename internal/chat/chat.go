// Package chat is the per-round message board.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/albapepper/footy-tipping/internal/fixture"
	"github.com/albapepper/footy-tipping/internal/store"
	"github.com/albapepper/footy-tipping/internal/validate"
)

var (
	// ErrNoRound means chat is unavailable until fixtures are loaded.
	ErrNoRound = errors.New("chat is unavailable until fixtures are loaded")
	// ErrEmptyMessage is returned for blank posts.
	ErrEmptyMessage = errors.New("empty message")
)

// Store is the persistence the chat needs.
type Store interface {
	ListFixtures(ctx context.Context) ([]store.Fixture, error)
	ChatMessages(ctx context.Context, round int) ([]store.ChatMessage, error)
	InsertChatMessage(ctx context.Context, m store.ChatMessage) (store.ChatMessage, error)
}

// Service lists and posts round chat messages.
type Service struct {
	store    Store
	validate *validator.Validate
	now      func() time.Time
	logger   *slog.Logger
}

// NewService creates a chat service. A nil now uses time.Now.
func NewService(s Store, now func() time.Time, logger *slog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: s, validate: validate.New(), now: now, logger: logger}
}

// Post is the body of a new chat message. RoundNumber 0 posts to the
// current round.
type Post struct {
	RoundNumber int    `json:"round_number" validate:"gte=0"`
	Message     string `json:"message" validate:"max=1000,no_xss"`
}

// resolve returns round when set, otherwise the current round.
func (s *Service) resolve(ctx context.Context, round int) (int, error) {
	if round > 0 {
		return round, nil
	}
	fixtures, err := s.store.ListFixtures(ctx)
	if err != nil {
		return 0, fmt.Errorf("list fixtures: %w", err)
	}
	current, ok := fixture.CurrentRound(fixtures, s.now())
	if !ok {
		return 0, ErrNoRound
	}
	return current, nil
}

// Messages returns a round's messages oldest first along with the round
// they belong to.
func (s *Service) Messages(ctx context.Context, round int) (int, []store.ChatMessage, error) {
	round, err := s.resolve(ctx, round)
	if err != nil {
		return 0, nil, err
	}
	msgs, err := s.store.ChatMessages(ctx, round)
	if err != nil {
		return 0, nil, err
	}
	if msgs == nil {
		msgs = []store.ChatMessage{}
	}
	return round, msgs, nil
}

// Send appends a message from user.
func (s *Service) Send(ctx context.Context, user store.User, p Post) (store.ChatMessage, error) {
	p.Message = strings.TrimSpace(p.Message)
	if err := s.validate.Struct(p); err != nil {
		return store.ChatMessage{}, err
	}
	round, err := s.resolve(ctx, p.RoundNumber)
	if err != nil {
		return store.ChatMessage{}, err
	}
	if p.Message == "" {
		return store.ChatMessage{}, ErrEmptyMessage
	}

	msg, err := s.store.InsertChatMessage(ctx, store.ChatMessage{
		UserID:      user.ID,
		RoundNumber: round,
		Message:     p.Message,
		Timestamp:   s.now().UTC(),
	})
	if err != nil {
		return store.ChatMessage{}, err
	}
	msg.Username = user.Username
	msg.Avatar = user.Avatar
	s.logger.Debug("Chat message posted", "user", user.Username, "round", round)
	return msg, nil
}
