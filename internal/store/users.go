package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const userColumns = `id, username, name, avatar, is_admin, created_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	var name sql.NullString
	if err := row.Scan(&u.ID, &u.Username, &name, &u.Avatar, &u.IsAdmin, &u.CreatedAt); err != nil {
		return User{}, err
	}
	if name.Valid {
		u.Name = &name.String
	}
	return u, nil
}

// CreateUser inserts a user and returns it with its assigned id.
func (s *SQLStore) CreateUser(ctx context.Context, u User) (User, error) {
	if u.Avatar == "" {
		u.Avatar = "default.jpg"
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	err := s.queryRow(ctx, `
		INSERT INTO users (username, name, avatar, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		u.Username, u.Name, u.Avatar, u.IsAdmin, u.CreatedAt.UTC(),
	).Scan(&u.ID)
	if err != nil {
		return User{}, fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	return u, nil
}

// UserByID loads a single user.
func (s *SQLStore) UserByID(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("load user %d: %w", id, err)
	}
	return u, nil
}

// ListUsers returns every user ordered by username.
func (s *SQLStore) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ClearUsers deletes every user together with their tips, chat messages,
// stats and stored reports. Fixtures are kept.
func (s *SQLStore) ClearUsers(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"chat_messages", "tips", "user_tip_stats", "tip_intelligence_reports"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return 0, fmt.Errorf("clear %s: %w", table, err)
		}
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM users")
	if err != nil {
		return 0, fmt.Errorf("clear users: %w", err)
	}
	n, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}
