package progression

import (
	"fmt"
	"time"

	"github.com/nutrio/nutrio/internal/app/catalog"
	"github.com/nutrio/nutrio/internal/domain"
)

// GrantResult is the outcome of one reward grant.
type GrantResult struct {
	Source          string         `json:"source"`
	BaseAmount      int            `json:"base_amount"`
	Multiplier      float64        `json:"multiplier"`
	EffectiveAmount int            `json:"effective_amount"` // after multiplier
	GrantedAmount   int            `json:"granted_amount"`   // after cap
	Clamped         bool           `json:"clamped"`
	Level           LevelResult    `json:"level"`
	Display         domain.Display `json:"display"`
}

// AchievementResult is the outcome of an unlock, including any
// achievement-count milestone bonuses it triggered.
type AchievementResult struct {
	UnlockResult
	Milestones []GrantResult  `json:"milestones,omitempty"`
	Display    domain.Display `json:"display"`
	Total      LevelResult    `json:"total_level"`
}

// Engine composes the multiplier resolver, daily cap enforcer, XP ledger and
// achievement tracker over one catalog. It holds no per-user state.
type Engine struct {
	cat        *catalog.Catalog
	caps       *DailyCapEnforcer
	milestones bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithAchievementMilestones toggles the bonus grants on the 1st, 10th, 25th,
// 50th and final achievement unlock. Enabled by default.
func WithAchievementMilestones(on bool) Option {
	return func(e *Engine) { e.milestones = on }
}

// NewEngine creates an engine over cat.
func NewEngine(cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		cat:        cat,
		caps:       NewDailyCapEnforcer(cat),
		milestones: true,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// Caps returns the engine's daily cap enforcer.
func (e *Engine) Caps() *DailyCapEnforcer { return e.caps }

// GrantReward applies one reward event: multiplier, then daily cap, then
// ledger. now supplies both the level-up timestamp and the cap day.
// On error the input state is returned unchanged.
func (e *Engine) GrantReward(state domain.ProgressionState, ev domain.RewardEvent, now time.Time) (domain.ProgressionState, GrantResult, error) {
	res := GrantResult{Source: ev.Source}

	def, ok := e.cat.Source(ev.Source)
	if !ok {
		return state, res, fmt.Errorf("%w: %s", domain.ErrUnknownSource, ev.Source)
	}
	base := def.BaseAmount
	if ev.BaseAmount != nil {
		base = *ev.BaseAmount
	}
	if base < 0 {
		return state, res, fmt.Errorf("%w: base amount %d", domain.ErrInvalidAmount, base)
	}
	res.BaseAmount = base

	mult, err := ResolveMultiplier(ev.Multiplier, ev.Context)
	if err != nil {
		return state, res, err
	}
	if base == 0 {
		res.Multiplier = mult
		res.Level = LevelResult{LevelBefore: state.Level, LevelAfter: state.Level}
		res.Display = DisplayFor(state)
		return state, res, nil
	}
	effective, err := ApplyMultiplier(base, ev.Multiplier, ev.Context)
	if err != nil {
		return state, res, err
	}
	res.Multiplier = mult
	res.EffectiveAmount = effective

	granted := e.caps.ClampForCap(ev.Source, effective, state, now)
	res.GrantedAmount = granted
	res.Clamped = granted < effective

	next := Prune(state, now)
	next = e.caps.Record(next, ev.Source, granted, now)
	next, lr, err := ApplyXP(next, granted, now)
	if err != nil {
		return state, res, err
	}
	res.Level = lr
	res.Display = DisplayFor(next)
	return next, res, nil
}

// UnlockAchievement unlocks id and, when enabled, grants the
// achievement-count milestone sources reached by this unlock.
func (e *Engine) UnlockAchievement(state domain.ProgressionState, id string, now time.Time) (domain.ProgressionState, AchievementResult, error) {
	next, ur, err := Unlock(state, id, e.cat, now)
	res := AchievementResult{UnlockResult: ur, Total: ur.Level}
	if err != nil {
		return state, res, err
	}
	if ur.WasNewUnlock && e.milestones {
		for _, src := range e.cat.MilestonesFor(len(next.Unlocked)) {
			var gr GrantResult
			next, gr, err = e.GrantReward(next, domain.RewardEvent{Source: src}, now)
			if err != nil {
				return state, res, fmt.Errorf("milestone %s: %w", src, err)
			}
			res.Milestones = append(res.Milestones, gr)
			res.Total = res.Total.merge(gr.Level)
		}
	}
	res.Display = DisplayFor(next)
	return next, res, nil
}

// Rehydrate rebuilds (level, currentXP) for a persisted lifetime total.
// This is the only way stored XP re-enters the engine.
func (e *Engine) Rehydrate(userID string, totalXP int) (domain.ProgressionState, domain.Display, error) {
	uid, err := domain.NormalizeUserID(userID)
	if err != nil {
		return domain.ProgressionState{}, domain.Display{}, err
	}
	if totalXP < 0 || totalXP > MaxTotalXP {
		return domain.ProgressionState{}, domain.Display{}, fmt.Errorf("%w: total %d", domain.ErrInvalidAmount, totalXP)
	}
	s := domain.NewProgressionState(uid)
	s.Level, s.CurrentXP = LevelFromTotalXP(totalXP)
	s.TotalXP = totalXP
	return s, DisplayFor(s), nil
}
