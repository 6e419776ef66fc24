package store

import (
	"context"
	"fmt"
	"time"
)

// ChatMessages returns a round's messages oldest first, joined with the
// author's username and avatar.
func (s *SQLStore) ChatMessages(ctx context.Context, round int) ([]ChatMessage, error) {
	rows, err := s.query(ctx, `
		SELECT c.id, c.user_id, u.username, u.avatar, c.round_number, c.message, c.created_at
		FROM chat_messages c
		JOIN users u ON u.id = c.user_id
		WHERE c.round_number = $1
		ORDER BY c.created_at, c.id`, round)
	if err != nil {
		return nil, fmt.Errorf("chat messages for round %d: %w", round, err)
	}
	defer rows.Close()

	var msgs []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Username, &m.Avatar, &m.RoundNumber, &m.Message, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// InsertChatMessage appends a message and returns it with id and timestamp set.
func (s *SQLStore) InsertChatMessage(ctx context.Context, m ChatMessage) (ChatMessage, error) {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	err := s.queryRow(ctx, `
		INSERT INTO chat_messages (user_id, round_number, message, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		m.UserID, m.RoundNumber, m.Message, m.Timestamp.UTC(),
	).Scan(&m.ID)
	if err != nil {
		return ChatMessage{}, fmt.Errorf("insert chat message: %w", err)
	}
	return m, nil
}
