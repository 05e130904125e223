package progression

import (
	"fmt"
	"time"

	"github.com/nutrio/nutrio/internal/domain"
)

// LevelResult describes the level transitions caused by one XP application.
type LevelResult struct {
	LeveledUp       bool  `json:"leveled_up"`
	LevelsGained    int   `json:"levels_gained"`
	LevelBefore     int   `json:"level_before"`
	LevelAfter      int   `json:"level_after"`
	MilestoneLevels []int `json:"milestone_levels,omitempty"`
}

// merge folds a later result into r.
func (r LevelResult) merge(later LevelResult) LevelResult {
	if r.LevelBefore == 0 {
		return later
	}
	r.LevelsGained += later.LevelsGained
	r.LeveledUp = r.LevelsGained > 0
	r.LevelAfter = later.LevelAfter
	r.MilestoneLevels = append(r.MilestoneLevels, later.MilestoneLevels...)
	return r
}

// ApplyXP adds amount to the ledger and resolves every level crossed.
// A single grant may cross many levels; the loop keeps
// CurrentXP < XPRequiredFor(Level) on return.
func ApplyXP(state domain.ProgressionState, amount int, now time.Time) (domain.ProgressionState, LevelResult, error) {
	res := LevelResult{LevelBefore: state.Level, LevelAfter: state.Level}
	if amount < 0 {
		return state, res, fmt.Errorf("%w: %d", domain.ErrInvalidAmount, amount)
	}
	if amount == 0 {
		return state, res, nil
	}
	if amount > MaxTotalXP || state.TotalXP > MaxTotalXP-amount {
		return state, res, fmt.Errorf("%w: %d exceeds the XP ceiling", domain.ErrInvalidAmount, amount)
	}

	next := state.Clone()
	if next.Level < 1 {
		next.Level = 1
	}
	next.CurrentXP += amount
	next.TotalXP += amount

	for next.CurrentXP >= XPRequiredFor(next.Level) {
		next.CurrentXP -= XPRequiredFor(next.Level)
		next.Level++
		res.LevelsGained++
		if IsLevelMilestone(next.Level) {
			res.MilestoneLevels = append(res.MilestoneLevels, next.Level)
		}
	}

	res.LevelAfter = next.Level
	res.LeveledUp = res.LevelsGained > 0
	if res.LeveledUp {
		t := now
		next.LastLevelUpAt = &t
	}
	return next, res, nil
}
