package progression_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrio/nutrio/internal/app/catalog"
	"github.com/nutrio/nutrio/internal/app/notify"
	"github.com/nutrio/nutrio/internal/app/progression"
	"github.com/nutrio/nutrio/internal/domain"
	"github.com/nutrio/nutrio/internal/infra/sqlite"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newService(t *testing.T, store domain.ProgressionStore, opts ...progression.ServiceOption) (*progression.Service, *clock) {
	t.Helper()
	clk := &clock{now: t0}
	opts = append([]progression.ServiceOption{progression.WithClock(clk.Now)}, opts...)
	svc := progression.NewService(progression.NewEngine(catalog.Default()), store, zerolog.Nop(), opts...)
	return svc, clk
}

// ═══════════════════════════════════════════════════════════════════════════
// Grants
// ═══════════════════════════════════════════════════════════════════════════

func TestService_GrantPersists(t *testing.T) {
	db := testDB(t)
	svc, _ := newService(t, db)
	ctx := context.Background()

	res, err := svc.Grant(ctx, "u1", progression.GrantRequest{Source: "hit_all_macros"})
	require.NoError(t, err)
	assert.Equal(t, 100, res.GrantedAmount)
	assert.Equal(t, 2, res.Display.Level)

	st, err := db.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 100, st.TotalXP)
	assert.Equal(t, int64(1), st.Version)
}

func TestService_GrantValidation(t *testing.T) {
	db := testDB(t)
	svc, _ := newService(t, db)
	ctx := context.Background()

	_, err := svc.Grant(ctx, "u1", progression.GrantRequest{Source: "nap"})
	assert.True(t, errors.Is(err, domain.ErrUnknownSource))

	_, err = svc.Grant(ctx, "", progression.GrantRequest{Source: "meal_log"})
	assert.True(t, errors.Is(err, domain.ErrInvalidUserID))

	_, err = svc.Grant(ctx, "u1", progression.GrantRequest{Source: "meal_log", BaseAmount: xp(-1)})
	assert.True(t, errors.Is(err, domain.ErrInvalidAmount))

	_, err = db.Load(ctx, "u1")
	assert.True(t, errors.Is(err, domain.ErrUserNotFound), "failed grants persist nothing")
}

func TestService_ConcurrentGrantsRespectCap(t *testing.T) {
	db := testDB(t)
	svc, _ := newService(t, db)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Grant(ctx, "u1", progression.GrantRequest{Source: "meal_log"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	st, err := db.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 200, st.TotalXP, "30 × 10 XP clamps to the 200 meal cap")
	assert.Less(t, st.CurrentXP, progression.XPRequiredFor(st.Level))
}

// racingStore lets another writer commit just before the service saves.
type racingStore struct {
	*sqlite.DB
	races int
	race  func(ctx context.Context) error
}

func (r *racingStore) Save(ctx context.Context, st domain.ProgressionState) (domain.ProgressionState, error) {
	if r.races > 0 {
		r.races--
		if err := r.race(ctx); err != nil {
			return st, err
		}
	}
	return r.DB.Save(ctx, st)
}

func TestService_ConflictRecomputesCap(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	engine := progression.NewEngine(catalog.Default())

	store := &racingStore{DB: db, races: 1}
	store.race = func(ctx context.Context) error {
		st, err := db.Load(ctx, "u1")
		if errors.Is(err, domain.ErrUserNotFound) {
			st = domain.NewProgressionState("u1")
		} else if err != nil {
			return err
		}
		next, _, err := engine.GrantReward(st, domain.RewardEvent{Source: "meal_log", BaseAmount: xp(150)}, t0)
		if err != nil {
			return err
		}
		_, err = db.Save(ctx, next)
		return err
	}

	svc, _ := newService(t, store)
	res, err := svc.Grant(ctx, "u1", progression.GrantRequest{Source: "meal_log", BaseAmount: xp(100)})
	require.NoError(t, err)
	assert.Equal(t, 50, res.GrantedAmount, "retry sees the other writer's 150")

	st, _ := db.Load(ctx, "u1")
	assert.Equal(t, 200, st.TotalXP)
}

func TestService_ConflictExhaustsRetries(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	store := &racingStore{DB: db, races: 100}
	store.race = func(ctx context.Context) error {
		st, err := db.Load(ctx, "u1")
		if errors.Is(err, domain.ErrUserNotFound) {
			st = domain.NewProgressionState("u1")
		} else if err != nil {
			return err
		}
		_, err = db.Save(ctx, st)
		return err
	}

	svc, _ := newService(t, store, progression.WithMaxRetries(2))
	_, err := svc.Grant(ctx, "u1", progression.GrantRequest{Source: "hit_calorie_goal"})
	assert.True(t, errors.Is(err, domain.ErrStaleState))
	assert.Equal(t, 97, store.races, "one initial attempt plus two retries")

	st, _ := db.Load(ctx, "u1")
	assert.Equal(t, 0, st.TotalXP)
}

func TestService_DerivedContext(t *testing.T) {
	db := testDB(t)
	svc, clk := newService(t, db, progression.WithStreaks(db))
	ctx := context.Background()

	// 2025-07-05 is a Saturday.
	clk.now = time.Date(2025, 7, 5, 12, 0, 0, 0, time.UTC)
	res, err := svc.Grant(ctx, "u1", progression.GrantRequest{Source: "hit_calorie_goal", Multiplier: domain.MultiplierWeekend})
	require.NoError(t, err)
	assert.Equal(t, 60, res.GrantedAmount)

	weekday := false
	res, err = svc.Grant(ctx, "u1", progression.GrantRequest{Source: "hit_calorie_goal", Multiplier: domain.MultiplierWeekend, IsWeekend: &weekday})
	require.NoError(t, err)
	assert.Equal(t, 30, res.GrantedAmount, "explicit context wins")

	res, err = svc.Grant(ctx, "u1", progression.GrantRequest{Source: "hit_calorie_goal", Multiplier: domain.MultiplierFirstAction})
	require.NoError(t, err)
	assert.Equal(t, 30, res.GrantedAmount, "already granted today")

	clk.Advance(24 * time.Hour)
	res, err = svc.Grant(ctx, "u1", progression.GrantRequest{Source: "hit_calorie_goal", Multiplier: domain.MultiplierFirstAction})
	require.NoError(t, err)
	assert.Equal(t, 60, res.GrantedAmount, "first grant of a new day")

	res, err = svc.Grant(ctx, "u1", progression.GrantRequest{Source: "hit_calorie_goal", Multiplier: domain.MultiplierFirstAction})
	require.NoError(t, err)
	assert.Equal(t, 30, res.GrantedAmount)
}

func TestService_FirstActionOncePerDay(t *testing.T) {
	db := testDB(t)
	svc, _ := newService(t, db, progression.WithStreaks(db))
	ctx := context.Background()

	// Recording activity does not consume the bonus.
	_, err := svc.RecordActivity(ctx, "u1")
	require.NoError(t, err)

	var granted []int
	for i := 0; i < 5; i++ {
		res, err := svc.Grant(ctx, "u1", progression.GrantRequest{Source: "hit_calorie_goal", Multiplier: domain.MultiplierFirstAction})
		require.NoError(t, err)
		granted = append(granted, res.GrantedAmount)
	}
	assert.Equal(t, []int{60, 30, 30, 30, 30}, granted)

	st, err := db.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, progression.DayKey(t0), st.LastGrantDay)
}

func TestService_FirstActionRecomputedOnConflict(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	other, _ := newService(t, db)

	store := &racingStore{DB: db, races: 1}
	store.race = func(ctx context.Context) error {
		_, err := other.Grant(ctx, "u1", progression.GrantRequest{Source: "meal_log"})
		return err
	}

	svc, _ := newService(t, store)
	res, err := svc.Grant(ctx, "u1", progression.GrantRequest{Source: "hit_calorie_goal", Multiplier: domain.MultiplierFirstAction})
	require.NoError(t, err)
	assert.Equal(t, 30, res.GrantedAmount, "the other writer's grant took the bonus")

	st, _ := db.Load(ctx, "u1")
	assert.Equal(t, 10+30, st.TotalXP)
}

func TestService_ExplicitZeroBase(t *testing.T) {
	db := testDB(t)
	svc, _ := newService(t, db)
	ctx := context.Background()

	res, err := svc.Grant(ctx, "u1", progression.GrantRequest{Source: "refer_user", BaseAmount: xp(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, res.GrantedAmount)
	assert.Equal(t, 0, res.Display.TotalXP)

	_, err = db.Load(ctx, "u1")
	assert.True(t, errors.Is(err, domain.ErrUserNotFound), "a zero grant writes nothing")

	res, err = svc.Grant(ctx, "u1", progression.GrantRequest{Source: "refer_user", Multiplier: domain.MultiplierFirstAction})
	require.NoError(t, err)
	assert.Equal(t, 1000, res.GrantedAmount, "a zero grant does not use the first-action bonus")
}

// ═══════════════════════════════════════════════════════════════════════════
// Achievements
// ═══════════════════════════════════════════════════════════════════════════

func TestService_UnlockAndAck(t *testing.T) {
	db := testDB(t)
	svc, _ := newService(t, db)
	ctx := context.Background()

	res, err := svc.UnlockAchievement(ctx, "u1", "first_meal")
	require.NoError(t, err)
	assert.True(t, res.WasNewUnlock)
	assert.Equal(t, 150, res.Display.TotalXP)

	again, err := svc.UnlockAchievement(ctx, "u1", "first_meal")
	require.NoError(t, err)
	assert.False(t, again.WasNewUnlock)
	assert.Equal(t, 150, again.Display.TotalXP)

	st, _ := db.Load(ctx, "u1")
	assert.Equal(t, int64(1), st.Version, "repeat unlock writes nothing")
	require.Len(t, st.RecentUnlocks, 1)

	n, err := svc.AckRecentUnlocks(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = svc.AckRecentUnlocks(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	status, err := svc.Status(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, status.RecentUnlocks)
	require.Len(t, status.Unlocked, 1)
	assert.Equal(t, "First Bite", status.Unlocked[0].Name)
}

func TestService_UnlockUnknown(t *testing.T) {
	db := testDB(t)
	svc, _ := newService(t, db)
	_, err := svc.UnlockAchievement(context.Background(), "u1", "moonwalk")
	assert.True(t, errors.Is(err, domain.ErrUnknownAchievement))
}

// ═══════════════════════════════════════════════════════════════════════════
// Rehydrate, status, prune
// ═══════════════════════════════════════════════════════════════════════════

func TestService_Rehydrate(t *testing.T) {
	db := testDB(t)
	svc, _ := newService(t, db)
	ctx := context.Background()

	_, err := svc.UnlockAchievement(ctx, "u1", "first_meal")
	require.NoError(t, err)

	d, err := svc.Rehydrate(ctx, "u1", 5000)
	require.NoError(t, err)
	assert.Equal(t, 10, d.Level)
	assert.Equal(t, 500, d.CurrentXP)

	st, _ := db.Load(ctx, "u1")
	assert.Equal(t, 5000, st.TotalXP)
	assert.True(t, st.IsUnlocked("first_meal"), "unlocks survive rehydration")
}

func TestService_StatusUnknownUser(t *testing.T) {
	db := testDB(t)
	svc, _ := newService(t, db)

	status, err := svc.Status(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, 1, status.Display.Level)
	assert.Equal(t, 0, status.Display.TotalXP)
	assert.Equal(t, 200, status.Caps[catalog.BucketMealLogging])
}

func TestService_StatusTodayUsage(t *testing.T) {
	db := testDB(t)
	svc, _ := newService(t, db)
	ctx := context.Background()

	_, err := svc.Grant(ctx, "u1", progression.GrantRequest{Source: "meal_log", BaseAmount: xp(120)})
	require.NoError(t, err)

	status, err := svc.Status(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 120, status.TodayUsage[catalog.BucketMealLogging])
}

func TestService_PruneAll(t *testing.T) {
	db := testDB(t)
	svc, clk := newService(t, db)
	ctx := context.Background()

	_, err := svc.Grant(ctx, "u1", progression.GrantRequest{Source: "meal_log"})
	require.NoError(t, err)
	_, err = svc.Grant(ctx, "u2", progression.GrantRequest{Source: "hit_calorie_goal"})
	require.NoError(t, err)

	clk.Advance(24 * time.Hour)
	n, err := svc.PruneAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only u1 had capped usage")

	st, _ := db.Load(ctx, "u1")
	assert.Empty(t, st.DailyXP)
	assert.Equal(t, 10, st.TotalXP)

	n, err = svc.PruneAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

// ═══════════════════════════════════════════════════════════════════════════
// Activity & notifications
// ═══════════════════════════════════════════════════════════════════════════

func TestService_RecordActivity(t *testing.T) {
	db := testDB(t)
	svc, clk := newService(t, db, progression.WithStreaks(db))
	ctx := context.Background()

	res, err := svc.RecordActivity(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, res.Grants, 1)
	assert.Equal(t, catalog.SourceDailyLogin, res.Grants[0].Source)

	res, err = svc.RecordActivity(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, res.Grants, "second activity of the day grants nothing")

	clk.Advance(24 * time.Hour)
	_, err = svc.RecordActivity(ctx, "u1")
	require.NoError(t, err)
	clk.Advance(24 * time.Hour)
	res, err = svc.RecordActivity(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Streak.CurrentDays)

	var sources []string
	for _, g := range res.Grants {
		sources = append(sources, g.Source)
	}
	assert.Equal(t, []string{catalog.SourceDailyLogin, catalog.SourceThreeDayStreak}, sources)

	st, _ := db.Load(ctx, "u1")
	assert.Equal(t, 5*3+25, st.TotalXP)
}

// staleStreaks serves one streak read from before another writer committed.
type staleStreaks struct {
	*sqlite.DB
	stale *domain.Streak
}

func (s *staleStreaks) GetStreak(ctx context.Context, userID string) (domain.Streak, error) {
	if s.stale != nil {
		st := *s.stale
		s.stale = nil
		return st, nil
	}
	return s.DB.GetStreak(ctx, userID)
}

func TestService_RecordActivityPaysOncePerDay(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	snapshot, err := db.GetStreak(ctx, "u1")
	require.NoError(t, err)

	first, _ := newService(t, db, progression.WithStreaks(db))
	res, err := first.RecordActivity(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, res.Grants, 1)

	// A second process read the streak before the first one saved.
	second, _ := newService(t, db, progression.WithStreaks(&staleStreaks{DB: db, stale: &snapshot}))
	res, err = second.RecordActivity(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, res.Grants, "daily_login already paid")
	assert.Equal(t, 1, res.Streak.CurrentDays)

	st, _ := db.Load(ctx, "u1")
	assert.Equal(t, 5, st.TotalXP)
}

func TestService_RecordActivityRequiresStreaks(t *testing.T) {
	svc, _ := newService(t, testDB(t))
	_, err := svc.RecordActivity(context.Background(), "u1")
	assert.Error(t, err)
}

func TestService_Notifications(t *testing.T) {
	db := testDB(t)
	notifier := notify.New(db)
	svc, _ := newService(t, db, progression.WithNotifier(notifier))
	ctx := context.Background()

	_, err := svc.Rehydrate(ctx, "u1", 4400)
	require.NoError(t, err)
	_, err = svc.Grant(ctx, "u1", progression.GrantRequest{Source: "refer_user"})
	require.NoError(t, err)

	pending, err := notifier.Pending(ctx, "u1", 10)
	require.NoError(t, err)
	var types []domain.NotificationType
	for _, n := range pending {
		types = append(types, n.Type)
	}
	assert.ElementsMatch(t, []domain.NotificationType{domain.NotifyLevelUp, domain.NotifyMilestone}, types)
}
