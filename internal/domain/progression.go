// Package domain holds the progression types shared by the engine, the store
// and the transport layers. Domain types are pure, with no infrastructure dependency.
package domain

import (
	"strings"
	"time"
)

// ─── Levels ─────────────────────────────────────────────────────────────────

// Tier groups display levels into bands.
type Tier string

const (
	TierBeginner     Tier = "beginner"
	TierIntermediate Tier = "intermediate"
	TierAdvanced     Tier = "advanced"
	TierElite        Tier = "elite"
	TierCosmic       Tier = "cosmic"
	TierGod          Tier = "god"
)

// LevelInfo is the static display entry for one level.
type LevelInfo struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	Emoji string `json:"emoji"`
	Tier  Tier   `json:"tier"`
}

// ─── Rewards ────────────────────────────────────────────────────────────────

// MultiplierKind names the single multiplier a caller requests for a grant.
type MultiplierKind string

const (
	MultiplierNone        MultiplierKind = "none"
	MultiplierPremium     MultiplierKind = "premium"
	MultiplierWeekend     MultiplierKind = "weekend"
	MultiplierFirstAction MultiplierKind = "first_action"
	MultiplierStreak      MultiplierKind = "streak"
)

// IsValid reports whether k is a known multiplier kind. The empty kind is
// treated as MultiplierNone.
func (k MultiplierKind) IsValid() bool {
	switch k {
	case "", MultiplierNone, MultiplierPremium, MultiplierWeekend, MultiplierFirstAction, MultiplierStreak:
		return true
	default:
		return false
	}
}

// RewardContext is the per-grant context the multiplier resolver reads.
type RewardContext struct {
	IsPremium          bool `json:"is_premium"`
	StreakDays         int  `json:"streak_days"`
	IsWeekend          bool `json:"is_weekend"`
	IsFirstActionToday bool `json:"is_first_action_today"`
}

// RewardEvent is a transient request to grant XP for one action.
// A nil BaseAmount means "use the catalog base amount for Source"; an
// explicit zero grants nothing.
type RewardEvent struct {
	Source     string         `json:"source"`
	BaseAmount *int           `json:"base_amount,omitempty"`
	Multiplier MultiplierKind `json:"multiplier"`
	Context    RewardContext  `json:"context"`
}

// RewardSourceDef is a catalog entry for a reward source.
// An empty CapBucket means the source is never capped.
type RewardSourceDef struct {
	ID         string `json:"id" yaml:"id" toml:"id"`
	BaseAmount int    `json:"base_amount" yaml:"base_amount" toml:"base_amount"`
	CapBucket  string `json:"cap_bucket,omitempty" yaml:"cap_bucket" toml:"cap_bucket"`
}

// Capped reports whether grants from this source count against a daily cap.
func (d RewardSourceDef) Capped() bool {
	return d.CapBucket != ""
}

// ─── Achievements ───────────────────────────────────────────────────────────

// Difficulty is the difficulty band of an achievement.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// IsValid reports whether d is a known difficulty.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// DefaultBonusXP is the bonus granted by an achievement of this difficulty
// when the catalog does not set one explicitly.
func (d Difficulty) DefaultBonusXP() int {
	switch d {
	case DifficultyMedium:
		return 150
	case DifficultyHard:
		return 300
	default:
		return 50
	}
}

// AchievementDef is a catalog entry for a one-time achievement.
type AchievementDef struct {
	ID         string     `json:"id" yaml:"id" toml:"id"`
	Name       string     `json:"name" yaml:"name" toml:"name"`
	Icon       string     `json:"icon,omitempty" yaml:"icon" toml:"icon"`
	BonusXP    int        `json:"bonus_xp" yaml:"bonus_xp" toml:"bonus_xp"`
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty" toml:"difficulty"`
}

// UnlockEvent records when an achievement was earned.
type UnlockEvent struct {
	ID            string    `json:"id"`
	AchievementID string    `json:"achievement_id"`
	BonusXP       int       `json:"bonus_xp"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

// ─── Progression State ──────────────────────────────────────────────────────

// ProgressionState is the per-user aggregate. The engine treats it as a value:
// every operation returns a new state and leaves its input untouched.
type ProgressionState struct {
	UserID        string                    `json:"user_id"`
	Level         int                       `json:"level"`
	CurrentXP     int                       `json:"current_xp"`
	TotalXP       int                       `json:"total_xp"`
	Unlocked      map[string]time.Time      `json:"unlocked"`
	RecentUnlocks []UnlockEvent             `json:"recent_unlocks"`
	DailyXP       map[string]map[string]int `json:"daily_xp"` // day → cap bucket → XP
	LastLevelUpAt *time.Time                `json:"last_level_up_at,omitempty"`
	LastGrantDay  string                    `json:"last_grant_day,omitempty"` // day of the last caller grant
	Version       int64                     `json:"version"`
}

// NewProgressionState returns the initial state created at account creation.
func NewProgressionState(userID string) ProgressionState {
	return ProgressionState{
		UserID:   userID,
		Level:    1,
		Unlocked: make(map[string]time.Time),
		DailyXP:  make(map[string]map[string]int),
	}
}

// IsUnlocked reports whether the achievement id has been earned.
func (s ProgressionState) IsUnlocked(id string) bool {
	_, ok := s.Unlocked[id]
	return ok
}

// Clone returns a deep copy of the state.
func (s ProgressionState) Clone() ProgressionState {
	cp := s
	cp.Unlocked = make(map[string]time.Time, len(s.Unlocked))
	for k, v := range s.Unlocked {
		cp.Unlocked[k] = v
	}
	cp.RecentUnlocks = append([]UnlockEvent(nil), s.RecentUnlocks...)
	cp.DailyXP = make(map[string]map[string]int, len(s.DailyXP))
	for day, buckets := range s.DailyXP {
		inner := make(map[string]int, len(buckets))
		for b, v := range buckets {
			inner[b] = v
		}
		cp.DailyXP[day] = inner
	}
	if s.LastLevelUpAt != nil {
		t := *s.LastLevelUpAt
		cp.LastLevelUpAt = &t
	}
	return cp
}

// Display is the level tuple returned to every caller of the engine.
type Display struct {
	TotalXP        int     `json:"total_xp"`
	Level          int     `json:"level"`
	CurrentXP      int     `json:"current_xp"`
	XPForNextLevel int     `json:"xp_for_next_level"`
	ProgressPct    float64 `json:"progress_pct"`
	LevelTitle     string  `json:"level_title"`
	LevelEmoji     string  `json:"level_emoji"`
	LevelTier      Tier    `json:"level_tier"`
}

// NormalizeUserID trims surrounding whitespace and rejects empty ids.
func NormalizeUserID(id string) (string, error) {
	s := strings.TrimSpace(id)
	if s == "" {
		return "", ErrInvalidUserID
	}
	return s, nil
}

// ─── Streak ─────────────────────────────────────────────────────────────────

// Streak tracks consecutive days of logged activity for one user.
type Streak struct {
	UserID        string    `json:"user_id"`
	CurrentDays   int       `json:"current_days"`
	LongestDays   int       `json:"longest_days"`
	LastDate      time.Time `json:"last_date"`
	FreezeWeekISO string    `json:"freeze_week_iso"` // ISO week the free freeze was spent, e.g. "2025-W28"
}

// ─── Notifications ──────────────────────────────────────────────────────────

// NotificationType categorizes notifications.
type NotificationType string

const (
	NotifyAchievement NotificationType = "achievement"
	NotifyLevelUp     NotificationType = "level_up"
	NotifyMilestone   NotificationType = "milestone"
)

// Notification is a user-facing message.
type Notification struct {
	ID        int64            `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	CreatedAt time.Time        `json:"created_at"`
	Shown     bool             `json:"shown"`
}

// NotificationPolicy governs how often notifications are sent.
type NotificationPolicy struct {
	MaxPerDay  int    `json:"max_per_day" toml:"max_per_day"`
	QuietStart string `json:"quiet_start" toml:"quiet_start"` // "22:00"
	QuietEnd   string `json:"quiet_end" toml:"quiet_end"`     // "08:00"
}

// DefaultNotificationPolicy returns the default policy: three per day, quiet overnight.
func DefaultNotificationPolicy() NotificationPolicy {
	return NotificationPolicy{
		MaxPerDay:  3,
		QuietStart: "22:00",
		QuietEnd:   "08:00",
	}
}
