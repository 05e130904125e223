package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nutrio/nutrio/internal/domain"
)

// ─── Streaks ────────────────────────────────────────────────────────────────

// GetStreak returns the user's streak. Users without one get a zero streak.
func (d *DB) GetStreak(ctx context.Context, userID string) (domain.Streak, error) {
	s := domain.Streak{UserID: userID}
	var last sql.NullInt64
	err := d.db.QueryRowContext(ctx,
		`SELECT current_days, longest_days, last_date, freeze_week FROM streaks WHERE user_id = ?`, userID,
	).Scan(&s.CurrentDays, &s.LongestDays, &last, &s.FreezeWeekISO)
	if errors.Is(err, sql.ErrNoRows) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("get streak: %w", err)
	}
	if last.Valid {
		s.LastDate = fromUnixMilli(last.Int64)
	}
	return s, nil
}

// SaveStreak replaces prev with next if the stored streak still has
// prev's last_date. A zero prev.LastDate means "no activity stored yet".
// It returns domain.ErrStaleState when another writer moved the streak.
func (d *DB) SaveStreak(ctx context.Context, prev, next domain.Streak) error {
	var last sql.NullInt64
	if !next.LastDate.IsZero() {
		last = sql.NullInt64{Int64: unixMilli(next.LastDate), Valid: true}
	}

	var res sql.Result
	var err error
	if prev.LastDate.IsZero() {
		res, err = d.db.ExecContext(ctx,
			`INSERT INTO streaks (user_id, current_days, longest_days, last_date, freeze_week)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(user_id) DO UPDATE SET
				current_days=excluded.current_days,
				longest_days=excluded.longest_days,
				last_date=excluded.last_date,
				freeze_week=excluded.freeze_week
			 WHERE streaks.last_date IS NULL`,
			next.UserID, next.CurrentDays, next.LongestDays, last, next.FreezeWeekISO,
		)
	} else {
		res, err = d.db.ExecContext(ctx,
			`UPDATE streaks
			 SET current_days = ?, longest_days = ?, last_date = ?, freeze_week = ?
			 WHERE user_id = ? AND last_date = ?`,
			next.CurrentDays, next.LongestDays, last, next.FreezeWeekISO,
			next.UserID, unixMilli(prev.LastDate),
		)
	}
	if err != nil {
		return fmt.Errorf("save streak: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: streak %s", domain.ErrStaleState, next.UserID)
	}
	return nil
}

// ─── Notifications ──────────────────────────────────────────────────────────

// InsertNotification creates a new notification.
func (d *DB) InsertNotification(ctx context.Context, n domain.Notification) (int64, error) {
	result, err := d.db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, type, title, body, created_at, shown)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.UserID, string(n.Type), n.Title, n.Body, unixMilli(n.CreatedAt), n.Shown,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// NotificationCountSince returns how many notifications the user received at
// or after since.
func (d *DB) NotificationCountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND created_at >= ?`,
		userID, unixMilli(since),
	).Scan(&count)
	return count, err
}

// ListPendingNotifications returns the user's unshown notifications, newest first.
func (d *DB) ListPendingNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, user_id, type, title, body, created_at, shown
		 FROM notifications WHERE user_id = ? AND shown = 0
		 ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifs []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

// MarkNotificationShown marks one of the user's notifications as shown.
func (d *DB) MarkNotificationShown(ctx context.Context, userID string, id int64) error {
	res, err := d.db.ExecContext(ctx,
		`UPDATE notifications SET shown = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", domain.ErrNotificationNotFound, id)
	}
	return nil
}

func scanNotification(s scanner) (domain.Notification, error) {
	var n domain.Notification
	var createdAt int64
	if err := s.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &createdAt, &n.Shown); err != nil {
		return n, err
	}
	n.CreatedAt = fromUnixMilli(createdAt)
	return n, nil
}
