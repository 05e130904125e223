package progression_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrio/nutrio/internal/app/catalog"
	"github.com/nutrio/nutrio/internal/app/progression"
	"github.com/nutrio/nutrio/internal/domain"
)

func xp(n int) *int { return &n }

func TestGrantReward_CatalogBase(t *testing.T) {
	e := progression.NewEngine(catalog.Default())
	st := domain.NewProgressionState("u1")

	next, res, err := e.GrantReward(st, domain.RewardEvent{Source: "hit_calorie_goal"}, t0)
	require.NoError(t, err)
	assert.Equal(t, 30, res.BaseAmount)
	assert.Equal(t, 30, res.GrantedAmount)
	assert.Equal(t, 30, next.TotalXP)
	assert.Equal(t, 30, res.Display.TotalXP)
	assert.InDelta(t, 1.0, res.Multiplier, 1e-9)
}

func TestGrantReward_MultiplierThenCap(t *testing.T) {
	e := progression.NewEngine(catalog.Default())
	st := domain.NewProgressionState("u1")

	ev := domain.RewardEvent{
		Source:     "meal_log",
		BaseAmount: xp(150),
		Multiplier: domain.MultiplierWeekend,
		Context:    domain.RewardContext{IsWeekend: true},
	}
	next, res, err := e.GrantReward(st, ev, t0)
	require.NoError(t, err)
	assert.Equal(t, 300, res.EffectiveAmount)
	assert.Equal(t, 200, res.GrantedAmount)
	assert.True(t, res.Clamped)
	assert.Equal(t, 200, next.TotalXP)
	assert.Equal(t, 200, next.DailyXP[progression.DayKey(t0)][catalog.BucketMealLogging])
}

func TestGrantReward_CapSequence(t *testing.T) {
	e := progression.NewEngine(catalog.Default())
	st := domain.NewProgressionState("u1")

	st, r1, err := e.GrantReward(st, domain.RewardEvent{Source: "meal_log", BaseAmount: xp(150)}, t0)
	require.NoError(t, err)
	st, r2, err := e.GrantReward(st, domain.RewardEvent{Source: "meal_log", BaseAmount: xp(100)}, t0)
	require.NoError(t, err)
	st, r3, err := e.GrantReward(st, domain.RewardEvent{Source: "meal_log", BaseAmount: xp(100)}, t0)
	require.NoError(t, err)

	assert.Equal(t, 150, r1.GrantedAmount)
	assert.Equal(t, 50, r2.GrantedAmount)
	assert.Equal(t, 0, r3.GrantedAmount)
	assert.Equal(t, 200, st.TotalXP)

	// uncapped source still pays in full
	st, r4, err := e.GrantReward(st, domain.RewardEvent{Source: catalog.SourceSevenDayStreak}, t0)
	require.NoError(t, err)
	assert.Equal(t, 75, r4.GrantedAmount)
	assert.Equal(t, 275, st.TotalXP)
}

func TestGrantReward_Truncation(t *testing.T) {
	e := progression.NewEngine(catalog.Default())
	_, res, err := e.GrantReward(domain.NewProgressionState("u1"), domain.RewardEvent{
		Source:     "meal_log_with_photo",
		BaseAmount: xp(15),
		Multiplier: domain.MultiplierPremium,
		Context:    domain.RewardContext{IsPremium: true},
	}, t0)
	require.NoError(t, err)
	assert.Equal(t, 22, res.GrantedAmount)
}

func TestGrantReward_Errors(t *testing.T) {
	e := progression.NewEngine(catalog.Default())
	st := domain.NewProgressionState("u1")

	tests := []struct {
		name string
		ev   domain.RewardEvent
		want error
	}{
		{"unknown source", domain.RewardEvent{Source: "nap"}, domain.ErrUnknownSource},
		{"negative base", domain.RewardEvent{Source: "meal_log", BaseAmount: xp(-5)}, domain.ErrInvalidAmount},
		{"unknown multiplier", domain.RewardEvent{Source: "meal_log", Multiplier: "mega"}, domain.ErrUnknownMultiplier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _, err := e.GrantReward(st, tt.ev, t0)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, st, next)
		})
	}
}

func TestGrantReward_ExplicitZeroBase(t *testing.T) {
	e := progression.NewEngine(catalog.Default())
	st := domain.NewProgressionState("u1")

	next, res, err := e.GrantReward(st, domain.RewardEvent{Source: "refer_user", BaseAmount: xp(0)}, t0)
	require.NoError(t, err)
	assert.Equal(t, 0, res.BaseAmount)
	assert.Equal(t, 0, res.GrantedAmount)
	assert.False(t, res.Level.LeveledUp)
	assert.Equal(t, st, next)

	// Omitting the amount still means the catalog base.
	next, res, err = e.GrantReward(st, domain.RewardEvent{Source: "refer_user"}, t0)
	require.NoError(t, err)
	assert.Equal(t, 500, res.GrantedAmount)
	assert.Equal(t, 500, next.TotalXP)
}

func TestGrantReward_PrunesOldDays(t *testing.T) {
	e := progression.NewEngine(catalog.Default())
	st := domain.NewProgressionState("u1")
	st, _, _ = e.GrantReward(st, domain.RewardEvent{Source: "meal_log", BaseAmount: xp(200)}, t0)

	tomorrow := t0.Add(24 * time.Hour)
	st, res, err := e.GrantReward(st, domain.RewardEvent{Source: "meal_log", BaseAmount: xp(50)}, tomorrow)
	require.NoError(t, err)
	assert.Equal(t, 50, res.GrantedAmount)
	assert.Len(t, st.DailyXP, 1)
	_, ok := st.DailyXP[progression.DayKey(tomorrow)]
	assert.True(t, ok)
}

func TestGrantReward_Monotonic(t *testing.T) {
	e := progression.NewEngine(catalog.Default())
	st := domain.NewProgressionState("u1")
	sources := []string{"meal_log", "log_water_glass", "hit_all_macros", "meal_log_barcode", "daily_login"}
	prevTotal, prevLevel := 0, 1
	for i := 0; i < 100; i++ {
		var err error
		st, _, err = e.GrantReward(st, domain.RewardEvent{Source: sources[i%len(sources)]}, t0)
		require.NoError(t, err)
		require.GreaterOrEqual(t, st.TotalXP, prevTotal)
		require.GreaterOrEqual(t, st.Level, prevLevel)
		require.Less(t, st.CurrentXP, progression.XPRequiredFor(st.Level))
		prevTotal, prevLevel = st.TotalXP, st.Level
	}
}

func TestUnlockAchievement_FirstMilestone(t *testing.T) {
	e := progression.NewEngine(catalog.Default())
	st := domain.NewProgressionState("u1")

	next, res, err := e.UnlockAchievement(st, "first_meal", t0)
	require.NoError(t, err)
	assert.True(t, res.WasNewUnlock)
	require.Len(t, res.Milestones, 1)
	assert.Equal(t, catalog.SourceFirstAchievement, res.Milestones[0].Source)
	assert.Equal(t, 150, next.TotalXP, "50 bonus + 100 first achievement")
	assert.Equal(t, 150, res.Display.TotalXP)
	assert.Equal(t, 1, res.Total.LevelsGained)
}

func TestUnlockAchievement_MilestonesDisabled(t *testing.T) {
	e := progression.NewEngine(catalog.Default(), progression.WithAchievementMilestones(false))
	next, res, err := e.UnlockAchievement(domain.NewProgressionState("u1"), "first_meal", t0)
	require.NoError(t, err)
	assert.Empty(t, res.Milestones)
	assert.Equal(t, 50, next.TotalXP)
}

func TestUnlockAchievement_AllAchievements(t *testing.T) {
	cat := catalog.Default()
	e := progression.NewEngine(cat)
	st := domain.NewProgressionState("u1")

	var res progression.AchievementResult
	for _, a := range cat.Achievements() {
		var err error
		st, res, err = e.UnlockAchievement(st, a.ID, t0)
		require.NoError(t, err)
	}
	var sources []string
	for _, m := range res.Milestones {
		sources = append(sources, m.Source)
	}
	assert.Contains(t, sources, catalog.SourceAllAchievements)
	assert.Len(t, st.Unlocked, cat.AchievementCount())
}

func TestUnlockAchievement_Idempotent(t *testing.T) {
	e := progression.NewEngine(catalog.Default())
	st, _, err := e.UnlockAchievement(domain.NewProgressionState("u1"), "first_meal", t0)
	require.NoError(t, err)

	again, res, err := e.UnlockAchievement(st, "first_meal", t0)
	require.NoError(t, err)
	assert.False(t, res.WasNewUnlock)
	assert.Empty(t, res.Milestones)
	assert.Equal(t, st.TotalXP, again.TotalXP)
	assert.Equal(t, st.TotalXP, res.Display.TotalXP)
}

func TestRehydrate(t *testing.T) {
	e := progression.NewEngine(catalog.Default())

	st, d, err := e.Rehydrate(" u1 ", 5000)
	require.NoError(t, err)
	assert.Equal(t, "u1", st.UserID)
	assert.Equal(t, 10, d.Level)
	assert.Equal(t, 500, d.CurrentXP)
	assert.Equal(t, 5000, d.TotalXP)

	_, _, err = e.Rehydrate("u1", -1)
	assert.True(t, errors.Is(err, domain.ErrInvalidAmount))

	_, _, err = e.Rehydrate("u1", progression.MaxTotalXP+1)
	assert.True(t, errors.Is(err, domain.ErrInvalidAmount))

	st, d, err = e.Rehydrate("u1", progression.MaxTotalXP)
	require.NoError(t, err)
	assert.Equal(t, progression.MaxLevel, st.Level)
	assert.Equal(t, progression.MaxDisplayLevel, d.Level)

	_, _, err = e.Rehydrate("  ", 10)
	assert.True(t, errors.Is(err, domain.ErrInvalidUserID))
}

func TestRehydrate_MatchesGrants(t *testing.T) {
	e := progression.NewEngine(catalog.Default())
	st := domain.NewProgressionState("u1")
	for _, src := range []string{"hit_all_macros", "refer_user", "complete_meal_plan", "hit_all_macros"} {
		var err error
		st, _, err = e.GrantReward(st, domain.RewardEvent{Source: src}, t0)
		require.NoError(t, err)
	}
	re, _, err := e.Rehydrate("u1", st.TotalXP)
	require.NoError(t, err)
	assert.Equal(t, st.Level, re.Level)
	assert.Equal(t, st.CurrentXP, re.CurrentXP)
}
