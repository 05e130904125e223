// Package progression implements the Nutrio progression engine.
// Actions become XP, XP becomes levels, multipliers and daily caps adjust
// grants, and achievements unlock exactly once.
//
// Everything in this package except Service is synchronous and pure: it takes
// a ProgressionState value and returns a new one. Service owns per-user
// serialization and persistence.
package progression

import (
	"math"

	"github.com/nutrio/nutrio/internal/domain"
)

const (
	// XPPerLevel is the linear coefficient of the level curve.
	XPPerLevel = 100

	// MaxDisplayLevel is the last level with its own title. Higher levels
	// keep accruing but display as MaxDisplayLevel.
	MaxDisplayLevel = 100

	// LevelMilestoneEvery marks every Nth level as a milestone.
	LevelMilestoneEvery = 10

	// MaxLevel is the highest level the curve resolves. MaxTotalXP is the
	// lifetime XP that reaches it; larger totals are rejected.
	MaxLevel   = 1_000_000
	MaxTotalXP = XPPerLevel * MaxLevel * (MaxLevel - 1) / 2
)

// XPRequiredFor returns the XP needed to advance from level to level+1.
// Levels below 1 are treated as level 1.
func XPRequiredFor(level int) int {
	if level < 1 {
		level = 1
	}
	return level * XPPerLevel
}

// CumulativeXPFor returns the lifetime XP at which the given level is reached:
// the sum of XPRequiredFor over levels 1..level-1. Level 1 starts at 0.
// Levels above MaxLevel+1 overflow on 32-bit platforms.
func CumulativeXPFor(level int) int {
	if level <= 1 {
		return 0
	}
	return XPPerLevel * level * (level - 1) / 2
}

// LevelFromTotalXP resolves lifetime XP into (level, XP toward next level).
// It lands on the same state incremental accrual does, so rehydrating a
// persisted total reproduces the incrementally built state. Totals outside
// [0, MaxTotalXP] are clamped.
func LevelFromTotalXP(totalXP int) (level, currentXP int) {
	t := min(max(totalXP, 0), MaxTotalXP)

	// Invert XPPerLevel*L*(L-1)/2 <= t, then settle float rounding.
	level = int((1 + math.Sqrt(1+8*float64(t)/XPPerLevel)) / 2)
	if level < 1 {
		level = 1
	}
	for level > 1 && CumulativeXPFor(level) > t {
		level--
	}
	for CumulativeXPFor(level+1) <= t {
		level++
	}
	return level, t - CumulativeXPFor(level)
}

// TierFor returns the display tier for a level (clamped to [1, MaxDisplayLevel]).
func TierFor(level int) domain.Tier {
	switch l := clampDisplayLevel(level); {
	case l <= 10:
		return domain.TierBeginner
	case l <= 25:
		return domain.TierIntermediate
	case l <= 40:
		return domain.TierAdvanced
	case l <= 50:
		return domain.TierElite
	case l <= 70:
		return domain.TierCosmic
	default:
		return domain.TierGod
	}
}

// LevelInfoFor returns the display entry for a level, clamped to [1, MaxDisplayLevel].
func LevelInfoFor(level int) domain.LevelInfo {
	return levelTable[clampDisplayLevel(level)-1]
}

// Levels returns a copy of the full display table.
func Levels() []domain.LevelInfo {
	out := make([]domain.LevelInfo, len(levelTable))
	copy(out, levelTable[:])
	return out
}

// IsLevelMilestone reports whether reaching level is a milestone (every 10th).
func IsLevelMilestone(level int) bool {
	return level > 0 && level%LevelMilestoneEvery == 0
}

// XPToNextLevel returns the XP still needed to reach the next level.
func XPToNextLevel(s domain.ProgressionState) int {
	return XPRequiredFor(s.Level) - s.CurrentXP
}

// ProgressPct returns progress toward the next level (0.0–100.0).
func ProgressPct(s domain.ProgressionState) float64 {
	need := XPRequiredFor(s.Level)
	pct := float64(s.CurrentXP) / float64(need) * 100.0
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// DisplayFor builds the display tuple for a state.
func DisplayFor(s domain.ProgressionState) domain.Display {
	info := LevelInfoFor(s.Level)
	return domain.Display{
		TotalXP:        s.TotalXP,
		Level:          s.Level,
		CurrentXP:      s.CurrentXP,
		XPForNextLevel: XPRequiredFor(s.Level),
		ProgressPct:    ProgressPct(s),
		LevelTitle:     info.Title,
		LevelEmoji:     info.Emoji,
		LevelTier:      info.Tier,
	}
}

func clampDisplayLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > MaxDisplayLevel {
		return MaxDisplayLevel
	}
	return level
}
