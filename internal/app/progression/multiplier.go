package progression

import (
	"fmt"
	"math"

	"github.com/nutrio/nutrio/internal/domain"
)

// Multipliers are held in hundredths so that floor(base * multiplier) is
// exact integer arithmetic: 15 * 1.5 is 22, never 22.499999.
const (
	percentBase        = 100
	premiumPercent     = 150
	weekendPercent     = 200
	firstActionPercent = 200

	streakStepDays    = 7
	streakStepPercent = 10
	streakMaxPercent  = 200
)

// StreakMultiplier returns 1 + floor(streakDays/7)*0.1, capped at 2.0.
func StreakMultiplier(streakDays int) float64 {
	return float64(streakPercent(streakDays)) / percentBase
}

func streakPercent(streakDays int) int {
	if streakDays < 0 {
		streakDays = 0
	}
	p := percentBase + (streakDays/streakStepDays)*streakStepPercent
	if p > streakMaxPercent {
		p = streakMaxPercent
	}
	return p
}

// multiplierPercent resolves the one requested multiplier in hundredths.
// A multiplier whose condition does not hold resolves to 100 (×1.0).
func multiplierPercent(kind domain.MultiplierKind, ctx domain.RewardContext) (int, error) {
	switch kind {
	case "", domain.MultiplierNone:
		return percentBase, nil
	case domain.MultiplierPremium:
		if ctx.IsPremium {
			return premiumPercent, nil
		}
	case domain.MultiplierWeekend:
		if ctx.IsWeekend {
			return weekendPercent, nil
		}
	case domain.MultiplierFirstAction:
		if ctx.IsFirstActionToday {
			return firstActionPercent, nil
		}
	case domain.MultiplierStreak:
		return streakPercent(ctx.StreakDays), nil
	default:
		return 0, fmt.Errorf("%w: %s", domain.ErrUnknownMultiplier, kind)
	}
	return percentBase, nil
}

// ResolveMultiplier returns the factor (≥ 1.0) for the caller-selected
// multiplier. Exactly one multiplier applies per grant; bonuses never stack.
func ResolveMultiplier(kind domain.MultiplierKind, ctx domain.RewardContext) (float64, error) {
	p, err := multiplierPercent(kind, ctx)
	if err != nil {
		return 0, err
	}
	return float64(p) / percentBase, nil
}

// ApplyMultiplier returns floor(base * multiplier). Truncation favours the
// house: a fractional XP is dropped, never rounded up.
func ApplyMultiplier(base int, kind domain.MultiplierKind, ctx domain.RewardContext) (int, error) {
	if base < 0 {
		return 0, fmt.Errorf("%w: base amount %d", domain.ErrInvalidAmount, base)
	}
	p, err := multiplierPercent(kind, ctx)
	if err != nil {
		return 0, err
	}
	if base > math.MaxInt/p {
		return 0, fmt.Errorf("%w: base amount %d overflows", domain.ErrInvalidAmount, base)
	}
	return base * p / percentBase, nil
}
