package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// FindReport returns the stored report for (user, match, round), or
// ErrNotFound. When duplicates exist the oldest wins.
func (s *SQLStore) FindReport(ctx context.Context, userID int64, matchID string, round int) (Report, error) {
	var r Report
	err := s.queryRow(ctx, `
		SELECT id, user_id, match_id, round_number, report, created_at
		FROM tip_intelligence_reports
		WHERE user_id = $1 AND match_id = $2 AND round_number = $3
		ORDER BY id
		LIMIT 1`, userID, matchID, round,
	).Scan(&r.ID, &r.UserID, &r.MatchID, &r.RoundNumber, &r.Report, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Report{}, ErrNotFound
	}
	if err != nil {
		return Report{}, fmt.Errorf("find report user=%d match=%s: %w", userID, matchID, err)
	}
	return r, nil
}

// InsertReport persists a completed report. It reports false when a row for
// the same (user, match, round) already existed.
func (s *SQLStore) InsertReport(ctx context.Context, r Report) (bool, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	res, err := s.exec(ctx, `
		INSERT INTO tip_intelligence_reports (user_id, match_id, round_number, report, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, match_id, round_number) DO NOTHING`,
		r.UserID, r.MatchID, r.RoundNumber, r.Report, r.CreatedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("insert report user=%d match=%s: %w", r.UserID, r.MatchID, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
