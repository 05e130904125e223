package progression

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nutrio/nutrio/internal/app/catalog"
	"github.com/nutrio/nutrio/internal/domain"
)

// UnlockResult reports the outcome of an unlock attempt.
type UnlockResult struct {
	WasNewUnlock bool                `json:"was_new_unlock"`
	Event        *domain.UnlockEvent `json:"event,omitempty"`
	Level        LevelResult         `json:"level"`
}

// Unlock records achievement id as earned and feeds its bonus into the
// ledger. Unlocking twice is a no-op. The bonus is never capped or multiplied.
func Unlock(state domain.ProgressionState, id string, cat *catalog.Catalog, now time.Time) (domain.ProgressionState, UnlockResult, error) {
	res := UnlockResult{Level: LevelResult{LevelBefore: state.Level, LevelAfter: state.Level}}

	def, ok := cat.Achievement(id)
	if !ok {
		return state, res, fmt.Errorf("%w: %s", domain.ErrUnknownAchievement, id)
	}
	if state.IsUnlocked(id) {
		return state, res, nil
	}

	next, lr, err := ApplyXP(state, def.BonusXP, now)
	if err != nil {
		return state, res, fmt.Errorf("apply bonus for %s: %w", id, err)
	}
	if def.BonusXP == 0 {
		next = state.Clone()
	}

	ev := domain.UnlockEvent{
		ID:            uuid.NewString(),
		AchievementID: id,
		BonusXP:       def.BonusXP,
		UnlockedAt:    now,
	}
	next.Unlocked[id] = now
	next.RecentUnlocks = append(next.RecentUnlocks, ev)

	res.WasNewUnlock = true
	res.Event = &ev
	res.Level = lr
	return next, res, nil
}

// AckRecentUnlocks clears the queue of unlock events awaiting display.
func AckRecentUnlocks(state domain.ProgressionState) domain.ProgressionState {
	if len(state.RecentUnlocks) == 0 {
		return state
	}
	next := state.Clone()
	next.RecentUnlocks = nil
	return next
}
