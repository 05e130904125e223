package progression_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrio/nutrio/internal/app/catalog"
	"github.com/nutrio/nutrio/internal/app/progression"
	"github.com/nutrio/nutrio/internal/domain"
)

func TestUnlock_FirstTime(t *testing.T) {
	cat := catalog.Default()
	st := domain.NewProgressionState("u1")

	next, res, err := progression.Unlock(st, "hydration_hero", cat, t0)
	require.NoError(t, err)
	assert.True(t, res.WasNewUnlock)
	require.NotNil(t, res.Event)
	assert.Equal(t, "hydration_hero", res.Event.AchievementID)
	assert.Equal(t, 150, res.Event.BonusXP)
	assert.NotEmpty(t, res.Event.ID)

	assert.True(t, next.IsUnlocked("hydration_hero"))
	assert.Equal(t, 150, next.TotalXP)
	assert.Equal(t, 2, next.Level)
	assert.Len(t, next.RecentUnlocks, 1)
	assert.False(t, st.IsUnlocked("hydration_hero"), "input untouched")
}

func TestUnlock_Idempotent(t *testing.T) {
	cat := catalog.Default()
	st := domain.NewProgressionState("u1")

	st, _, err := progression.Unlock(st, "first_meal", cat, t0)
	require.NoError(t, err)
	total := st.TotalXP

	again, res, err := progression.Unlock(st, "first_meal", cat, t0)
	require.NoError(t, err)
	assert.False(t, res.WasNewUnlock)
	assert.Nil(t, res.Event)
	assert.Equal(t, total, again.TotalXP)
	assert.Len(t, again.RecentUnlocks, 1)
}

func TestUnlock_Unknown(t *testing.T) {
	st := domain.NewProgressionState("u1")
	next, _, err := progression.Unlock(st, "nope", catalog.Default(), t0)
	assert.True(t, errors.Is(err, domain.ErrUnknownAchievement))
	assert.Equal(t, 0, next.TotalXP)
	assert.Empty(t, next.Unlocked)
}

func TestUnlock_LargeBonusCrossesLevels(t *testing.T) {
	cat := catalog.New(nil, nil, []domain.AchievementDef{
		{ID: "jackpot", Name: "Jackpot", BonusXP: 5000, Difficulty: domain.DifficultyHard},
	})
	next, res, err := progression.Unlock(domain.NewProgressionState("u1"), "jackpot", cat, t0)
	require.NoError(t, err)
	assert.Equal(t, 10, next.Level)
	assert.Equal(t, 500, next.CurrentXP)
	assert.Equal(t, 9, res.Level.LevelsGained)
}

func TestUnlock_ZeroBonus(t *testing.T) {
	cat := catalog.New(nil, nil, []domain.AchievementDef{
		{ID: "hello", Name: "Hello", BonusXP: 0, Difficulty: domain.DifficultyEasy},
	})
	st := domain.NewProgressionState("u1")
	next, res, err := progression.Unlock(st, "hello", cat, t0)
	require.NoError(t, err)
	assert.True(t, res.WasNewUnlock)
	assert.True(t, next.IsUnlocked("hello"))
	assert.False(t, st.IsUnlocked("hello"), "input untouched")
}

func TestUnlock_BonusIgnoresCaps(t *testing.T) {
	cat := catalog.Default()
	caps := progression.NewDailyCapEnforcer(cat)
	st := caps.Record(domain.NewProgressionState("u1"), "meal_log", 200, t0)

	next, _, err := progression.Unlock(st, "macro_master", cat, t0)
	require.NoError(t, err)
	assert.Equal(t, 300, next.TotalXP)
}

func TestAckRecentUnlocks(t *testing.T) {
	cat := catalog.Default()
	st := domain.NewProgressionState("u1")
	st, _, _ = progression.Unlock(st, "first_meal", cat, t0)
	st, _, _ = progression.Unlock(st, "early_bird", cat, t0)
	require.Len(t, st.RecentUnlocks, 2)

	acked := progression.AckRecentUnlocks(st)
	assert.Empty(t, acked.RecentUnlocks)
	assert.Len(t, acked.Unlocked, 2, "unlocks are kept")
	assert.Len(t, st.RecentUnlocks, 2, "input untouched")
}
