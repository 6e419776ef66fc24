package store

import (
	"context"
	"fmt"
	"time"
)

const tipColumns = `id, user_id, username, match_id, selected_team, created_at`

func (s *SQLStore) listTips(ctx context.Context, query string, args ...any) ([]Tip, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tips []Tip
	for rows.Next() {
		var t Tip
		if err := rows.Scan(&t.ID, &t.UserID, &t.Username, &t.MatchID, &t.SelectedTeam, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tip: %w", err)
		}
		tips = append(tips, t)
	}
	return tips, rows.Err()
}

// TipsForUser returns the user's tips restricted to matchIDs.
func (s *SQLStore) TipsForUser(ctx context.Context, userID int64, matchIDs []string) ([]Tip, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + tipColumns + ` FROM tips
		WHERE user_id = $1 AND match_id IN (` + placeholders(2, len(matchIDs)) + `)
		ORDER BY id`
	tips, err := s.listTips(ctx, query, stringArgs([]any{userID}, matchIDs)...)
	if err != nil {
		return nil, fmt.Errorf("tips for user %d: %w", userID, err)
	}
	return tips, nil
}

// TipsForMatches returns every user's tips for matchIDs.
func (s *SQLStore) TipsForMatches(ctx context.Context, matchIDs []string) ([]Tip, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + tipColumns + ` FROM tips
		WHERE match_id IN (` + placeholders(1, len(matchIDs)) + `)
		ORDER BY username, id`
	tips, err := s.listTips(ctx, query, stringArgs(nil, matchIDs)...)
	if err != nil {
		return nil, fmt.Errorf("tips for matches: %w", err)
	}
	return tips, nil
}

// AllTips returns every tip ordered by id.
func (s *SQLStore) AllTips(ctx context.Context) ([]Tip, error) {
	tips, err := s.listTips(ctx, `SELECT `+tipColumns+` FROM tips ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tips: %w", err)
	}
	return tips, nil
}

// InsertTips writes tips in one transaction. Tips that already exist for the
// same (user, match) are left untouched; the number of new rows is returned.
func (s *SQLStore) InsertTips(ctx context.Context, tips []Tip) (int, error) {
	if len(tips) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.dialect.rebind(`
		INSERT INTO tips (user_id, username, match_id, selected_team, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, match_id) DO NOTHING`))
	if err != nil {
		return 0, fmt.Errorf("prepare tip insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	inserted := 0
	for _, t := range tips {
		created := t.CreatedAt
		if created.IsZero() {
			created = now
		}
		res, err := stmt.ExecContext(ctx, t.UserID, t.Username, t.MatchID, t.SelectedTeam, created.UTC())
		if err != nil {
			return 0, fmt.Errorf("insert tip user=%d match=%s: %w", t.UserID, t.MatchID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// ReplaceTips deletes the user's existing tips for the given matches and
// writes the new ones. Only operator jobs use this; users cannot edit tips.
func (s *SQLStore) ReplaceTips(ctx context.Context, userID int64, tips []Tip) (int, error) {
	if len(tips) == 0 {
		return 0, nil
	}
	matchIDs := make([]string, 0, len(tips))
	for _, t := range tips {
		matchIDs = append(matchIDs, t.MatchID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	del := `DELETE FROM tips WHERE user_id = $1 AND match_id IN (` + placeholders(2, len(matchIDs)) + `)`
	if _, err := tx.ExecContext(ctx, s.dialect.rebind(del), stringArgs([]any{userID}, matchIDs)...); err != nil {
		return 0, fmt.Errorf("delete tips for user %d: %w", userID, err)
	}

	now := time.Now().UTC()
	for _, t := range tips {
		_, err := tx.ExecContext(ctx, s.dialect.rebind(`
			INSERT INTO tips (user_id, username, match_id, selected_team, created_at)
			VALUES ($1, $2, $3, $4, $5)`),
			userID, t.Username, t.MatchID, t.SelectedTeam, now)
		if err != nil {
			return 0, fmt.Errorf("insert tip user=%d match=%s: %w", userID, t.MatchID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(tips), nil
}
