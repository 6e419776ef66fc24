package store

import (
	"context"
	"fmt"
	"time"
)

// RefreshTipStats recomputes user_tip_stats for every user. Only tips on
// fixtures with a recorded winner are counted. Returns the number of users
// written.
func (s *SQLStore) RefreshTipStats(ctx context.Context) (int, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return 0, err
	}
	fixtures, err := s.ListFixtures(ctx)
	if err != nil {
		return 0, err
	}
	tips, err := s.AllTips(ctx)
	if err != nil {
		return 0, err
	}

	winners := make(map[string]string, len(fixtures))
	for _, f := range fixtures {
		if f.WinningTeam != nil {
			winners[f.MatchID] = *f.WinningTeam
		}
	}

	type tally struct{ total, correct int }
	tallies := make(map[int64]*tally, len(users))
	for _, u := range users {
		tallies[u.ID] = &tally{}
	}
	for _, t := range tips {
		winner, decided := winners[t.MatchID]
		tl, ok := tallies[t.UserID]
		if !decided || !ok {
			continue
		}
		tl.total++
		if t.SelectedTeam == winner {
			tl.correct++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.dialect.rebind(`
		INSERT INTO user_tip_stats (user_id, total_tips, correct_tips, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			total_tips = excluded.total_tips,
			correct_tips = excluded.correct_tips,
			updated_at = excluded.updated_at`))
	if err != nil {
		return 0, fmt.Errorf("prepare stats upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, u := range users {
		tl := tallies[u.ID]
		if _, err := stmt.ExecContext(ctx, u.ID, tl.total, tl.correct, now); err != nil {
			return 0, fmt.Errorf("upsert stats for user %d: %w", u.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(users), nil
}

// TipStats returns the stored tallies, best first.
func (s *SQLStore) TipStats(ctx context.Context) ([]TipStats, error) {
	rows, err := s.query(ctx, `
		SELECT st.user_id, u.username, st.total_tips, st.correct_tips, st.updated_at
		FROM user_tip_stats st
		JOIN users u ON u.id = st.user_id
		ORDER BY st.correct_tips DESC, u.username`)
	if err != nil {
		return nil, fmt.Errorf("list tip stats: %w", err)
	}
	defer rows.Close()

	var stats []TipStats
	for rows.Next() {
		var st TipStats
		if err := rows.Scan(&st.UserID, &st.Username, &st.TotalTips, &st.CorrectTips, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tip stats: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
