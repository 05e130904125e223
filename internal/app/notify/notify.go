// Package notify decides which progression events become user notifications.
// Only achievement unlocks, level-ups and level milestones notify. A per-day
// cap and overnight quiet hours keep the volume low.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nutrio/nutrio/internal/domain"
	"github.com/nutrio/nutrio/internal/infra/metrics"
)

// Service stores notifications subject to a NotificationPolicy.
type Service struct {
	store  domain.NotificationStore
	policy domain.NotificationPolicy
	now    func() time.Time
}

// New creates a notification service with the default policy.
func New(store domain.NotificationStore) *Service {
	return NewWithPolicy(store, domain.DefaultNotificationPolicy())
}

// NewWithPolicy creates a notification service with a custom policy.
func NewWithPolicy(store domain.NotificationStore, policy domain.NotificationPolicy) *Service {
	return &Service{store: store, policy: policy, now: time.Now}
}

// WithClock replaces the service clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Notify stores n if policy allows it. It returns the new id, or 0 when the
// notification was suppressed. A zero CreatedAt is filled from the clock.
func (s *Service) Notify(ctx context.Context, n domain.Notification) (int64, error) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}

	if s.isQuietHour(n.CreatedAt) {
		metrics.NotificationsSuppressed.WithLabelValues("quiet_hours").Inc()
		return 0, nil
	}

	count, err := s.store.NotificationCountSince(ctx, n.UserID, startOfDay(n.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("count today: %w", err)
	}
	if count >= s.policy.MaxPerDay {
		metrics.NotificationsSuppressed.WithLabelValues("daily_limit").Inc()
		return 0, nil
	}

	n.Shown = false
	id, err := s.store.InsertNotification(ctx, n)
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}
	metrics.NotificationsSent.WithLabelValues(string(n.Type)).Inc()
	return id, nil
}

// Pending returns unshown notifications for a user, oldest first.
func (s *Service) Pending(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	return s.store.ListPendingNotifications(ctx, userID, limit)
}

// MarkShown marks a user's notification as shown.
func (s *Service) MarkShown(ctx context.Context, userID string, id int64) error {
	return s.store.MarkNotificationShown(ctx, userID, id)
}

// TodayCount returns how many notifications the user received today.
func (s *Service) TodayCount(ctx context.Context, userID string) (int, error) {
	return s.store.NotificationCountSince(ctx, userID, startOfDay(s.now()))
}

// Policy returns the current notification policy.
func (s *Service) Policy() domain.NotificationPolicy {
	return s.policy
}

// isQuietHour reports whether t falls within quiet hours.
func (s *Service) isQuietHour(t time.Time) bool {
	startHour, startMin := parseHHMM(s.policy.QuietStart)
	endHour, endMin := parseHHMM(s.policy.QuietEnd)

	at := t.Hour()*60 + t.Minute()
	start := startHour*60 + startMin
	end := endHour*60 + endMin

	if start == end {
		return false
	}
	if start > end {
		// Wraps midnight: e.g., 22:00 – 08:00
		return at >= start || at < end
	}
	return at >= start && at < end
}

// parseHHMM parses "HH:MM" into hour and minute.
func parseHHMM(s string) (int, int) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h, m
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
