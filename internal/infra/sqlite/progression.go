package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nutrio/nutrio/internal/domain"
)

// ─── Progression Store ──────────────────────────────────────────────────────

// Load returns the stored progression for userID, or domain.ErrUserNotFound.
func (d *DB) Load(ctx context.Context, userID string) (domain.ProgressionState, error) {
	st := domain.NewProgressionState(userID)

	var lastLevelUp sql.NullInt64
	err := d.db.QueryRowContext(ctx,
		`SELECT level, current_xp, total_xp, last_level_up_at, last_grant_day, version
		 FROM progression WHERE user_id = ?`, userID,
	).Scan(&st.Level, &st.CurrentXP, &st.TotalXP, &lastLevelUp, &st.LastGrantDay, &st.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return st, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}
	if err != nil {
		return st, fmt.Errorf("load progression: %w", err)
	}
	if lastLevelUp.Valid {
		t := fromUnixMilli(lastLevelUp.Int64)
		st.LastLevelUpAt = &t
	}

	if err := d.loadUnlocked(ctx, &st); err != nil {
		return st, err
	}
	if err := d.loadRecentUnlocks(ctx, &st); err != nil {
		return st, err
	}
	if err := d.loadDailyXP(ctx, &st); err != nil {
		return st, err
	}
	return st, nil
}

func (d *DB) loadUnlocked(ctx context.Context, st *domain.ProgressionState) error {
	rows, err := d.db.QueryContext(ctx,
		`SELECT achievement_id, unlocked_at FROM achievements WHERE user_id = ?`, st.UserID)
	if err != nil {
		return fmt.Errorf("load achievements: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var at int64
		if err := rows.Scan(&id, &at); err != nil {
			return err
		}
		st.Unlocked[id] = fromUnixMilli(at)
	}
	return rows.Err()
}

func (d *DB) loadRecentUnlocks(ctx context.Context, st *domain.ProgressionState) error {
	rows, err := d.db.QueryContext(ctx,
		`SELECT event_id, achievement_id, bonus_xp, unlocked_at
		 FROM recent_unlocks WHERE user_id = ? ORDER BY unlocked_at, rowid`, st.UserID)
	if err != nil {
		return fmt.Errorf("load recent unlocks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		ev, err := scanUnlockEvent(rows)
		if err != nil {
			return err
		}
		st.RecentUnlocks = append(st.RecentUnlocks, ev)
	}
	return rows.Err()
}

func (d *DB) loadDailyXP(ctx context.Context, st *domain.ProgressionState) error {
	rows, err := d.db.QueryContext(ctx,
		`SELECT day, bucket, amount FROM daily_xp WHERE user_id = ?`, st.UserID)
	if err != nil {
		return fmt.Errorf("load daily xp: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var day, bucket string
		var amount int
		if err := rows.Scan(&day, &bucket, &amount); err != nil {
			return err
		}
		if st.DailyXP[day] == nil {
			st.DailyXP[day] = make(map[string]int)
		}
		st.DailyXP[day][bucket] = amount
	}
	return rows.Err()
}

// Save writes st in one transaction if the stored version still equals
// st.Version (0 means "not yet stored"). It returns st with its new version,
// or domain.ErrStaleState when another writer got there first.
func (d *DB) Save(ctx context.Context, st domain.ProgressionState) (domain.ProgressionState, error) {
	now := unixMilli(time.Now())
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		var res sql.Result
		var err error
		if st.Version == 0 {
			res, err = tx.ExecContext(ctx,
				`INSERT INTO progression (user_id, level, current_xp, total_xp, last_level_up_at, last_grant_day, version, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, 1, ?)
				 ON CONFLICT(user_id) DO NOTHING`,
				st.UserID, st.Level, st.CurrentXP, st.TotalXP, nullableUnixMilli(st.LastLevelUpAt), st.LastGrantDay, now,
			)
		} else {
			res, err = tx.ExecContext(ctx,
				`UPDATE progression
				 SET level = ?, current_xp = ?, total_xp = ?, last_level_up_at = ?, last_grant_day = ?,
				     version = version + 1, updated_at = ?
				 WHERE user_id = ? AND version = ?`,
				st.Level, st.CurrentXP, st.TotalXP, nullableUnixMilli(st.LastLevelUpAt), st.LastGrantDay, now,
				st.UserID, st.Version,
			)
		}
		if err != nil {
			return fmt.Errorf("write progression: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: %s at version %d", domain.ErrStaleState, st.UserID, st.Version)
		}

		// Achievements are never revoked.
		for id, at := range st.Unlocked {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO achievements (user_id, achievement_id, unlocked_at) VALUES (?, ?, ?)`,
				st.UserID, id, unixMilli(at),
			); err != nil {
				return fmt.Errorf("write achievement %s: %w", id, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM recent_unlocks WHERE user_id = ?`, st.UserID); err != nil {
			return fmt.Errorf("clear recent unlocks: %w", err)
		}
		for _, ev := range st.RecentUnlocks {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO recent_unlocks (event_id, user_id, achievement_id, bonus_xp, unlocked_at)
				 VALUES (?, ?, ?, ?, ?)`,
				ev.ID, st.UserID, ev.AchievementID, ev.BonusXP, unixMilli(ev.UnlockedAt),
			); err != nil {
				return fmt.Errorf("write recent unlock: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM daily_xp WHERE user_id = ?`, st.UserID); err != nil {
			return fmt.Errorf("clear daily xp: %w", err)
		}
		for day, buckets := range st.DailyXP {
			for bucket, amount := range buckets {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO daily_xp (user_id, day, bucket, amount) VALUES (?, ?, ?, ?)`,
					st.UserID, day, bucket, amount,
				); err != nil {
					return fmt.Errorf("write daily xp: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return st, err
	}

	saved := st.Clone()
	saved.Version = st.Version + 1
	return saved, nil
}

// ListUserIDs returns every user with stored progression, sorted.
func (d *DB) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT user_id FROM progression ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UserCount returns how many users have stored progression.
func (d *DB) UserCount(ctx context.Context) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM progression`).Scan(&n)
	return n, err
}

func scanUnlockEvent(s scanner) (domain.UnlockEvent, error) {
	var ev domain.UnlockEvent
	var at int64
	if err := s.Scan(&ev.ID, &ev.AchievementID, &ev.BonusXP, &at); err != nil {
		return ev, err
	}
	ev.UnlockedAt = fromUnixMilli(at)
	return ev, nil
}
