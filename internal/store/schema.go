package store

import (
	"context"
	"fmt"
	"strings"
)

// dialect captures the few places where Postgres and SQLite disagree.
type dialect struct {
	name       string
	migrations []string
}

// rebind rewrites $N placeholders into SQLite's ?N form. Postgres queries
// are used verbatim.
func (d dialect) rebind(query string) string {
	if d.name != "sqlite" {
		return query
	}
	return strings.ReplaceAll(query, "$", "?")
}

var postgresDialect = dialect{
	name: "postgres",
	migrations: []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			name TEXT,
			avatar TEXT NOT NULL DEFAULT 'default.jpg',
			is_admin BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS fixture_free (
			match_id TEXT PRIMARY KEY,
			round INTEGER NOT NULL,
			home_team TEXT NOT NULL,
			away_team TEXT NOT NULL,
			kickoff TIMESTAMPTZ,
			winning_team TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS tips (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			username TEXT NOT NULL,
			match_id TEXT NOT NULL,
			selected_team TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, match_id)
		)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			round_number INTEGER NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS tip_intelligence_reports (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			match_id TEXT NOT NULL,
			round_number INTEGER NOT NULL,
			report TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, match_id, round_number)
		)`,
		`CREATE TABLE IF NOT EXISTS user_tip_stats (
			user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			total_tips INTEGER NOT NULL DEFAULT 0,
			correct_tips INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fixture_free_round ON fixture_free(round)`,
		`CREATE INDEX IF NOT EXISTS idx_tips_match ON tips(match_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_round ON chat_messages(round_number, created_at)`,
	},
}

var sqliteDialect = dialect{
	name: "sqlite",
	migrations: []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username VARCHAR(80) UNIQUE NOT NULL,
			name VARCHAR(120),
			avatar VARCHAR(120) NOT NULL DEFAULT 'default.jpg',
			is_admin BOOLEAN NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS fixture_free (
			match_id VARCHAR(40) PRIMARY KEY,
			round INTEGER NOT NULL,
			home_team VARCHAR(80) NOT NULL,
			away_team VARCHAR(80) NOT NULL,
			kickoff TIMESTAMP,
			winning_team VARCHAR(80)
		)`,
		`CREATE TABLE IF NOT EXISTS tips (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			username VARCHAR(80) NOT NULL,
			match_id VARCHAR(40) NOT NULL,
			selected_team VARCHAR(80) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			UNIQUE (user_id, match_id)
		)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			round_number INTEGER NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS tip_intelligence_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			match_id VARCHAR(40) NOT NULL,
			round_number INTEGER NOT NULL,
			report TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			UNIQUE (user_id, match_id, round_number)
		)`,
		`CREATE TABLE IF NOT EXISTS user_tip_stats (
			user_id INTEGER PRIMARY KEY,
			total_tips INTEGER NOT NULL DEFAULT 0,
			correct_tips INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fixture_free_round ON fixture_free(round)`,
		`CREATE INDEX IF NOT EXISTS idx_tips_match ON tips(match_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_round ON chat_messages(round_number, created_at)`,
	},
}

// Migrate creates the schema if it does not exist yet.
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, m := range s.dialect.migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
