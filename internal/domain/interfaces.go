package domain

import (
	"context"
	"time"
)

// ─── Store Interfaces ───────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// ProgressionStore persists one ProgressionState per user.
type ProgressionStore interface {
	// Load returns the stored state, or ErrUserNotFound.
	Load(ctx context.Context, userID string) (ProgressionState, error)

	// Save writes the state if the stored version still equals state.Version,
	// and returns the state with its new version. A version mismatch returns
	// ErrStaleState and writes nothing.
	Save(ctx context.Context, state ProgressionState) (ProgressionState, error)

	// ListUserIDs returns every user with stored progression.
	ListUserIDs(ctx context.Context) ([]string, error)
}

// StreakStore persists per-user activity streaks.
type StreakStore interface {
	GetStreak(ctx context.Context, userID string) (Streak, error)

	// SaveStreak writes next only if the stored streak still matches prev
	// and returns ErrStaleState otherwise.
	SaveStreak(ctx context.Context, prev, next Streak) error
}

// NotificationStore persists per-user notifications.
type NotificationStore interface {
	InsertNotification(ctx context.Context, n Notification) (int64, error)
	NotificationCountSince(ctx context.Context, userID string, since time.Time) (int, error)
	ListPendingNotifications(ctx context.Context, userID string, limit int) ([]Notification, error)
	MarkNotificationShown(ctx context.Context, userID string, id int64) error
}
