package progression

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/nutrio/nutrio/internal/app/catalog"
	"github.com/nutrio/nutrio/internal/domain"
	"github.com/nutrio/nutrio/internal/infra/metrics"
)

// DefaultMaxRetries is how many times a grant is recomputed after a
// compare-and-swap conflict before ErrStaleState is returned.
const DefaultMaxRetries = 3

// errNoChange tells withState to skip the save.
var errNoChange = errors.New("no change")

// Notifier receives user-facing progression notifications.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) (int64, error)
}

// Service runs the engine against persisted per-user state. Mutations for
// one user are serialized in-process and guarded by compare-and-swap in the
// store; a conflict recomputes the whole operation on fresh state.
type Service struct {
	engine     *Engine
	store      domain.ProgressionStore
	streaks    domain.StreakStore
	notifier   Notifier
	log        zerolog.Logger
	now        func() time.Time
	loc        *time.Location
	maxRetries int
	locks      keyedMutex
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithStreaks enables streak tracking and streak-derived grant context.
func WithStreaks(st domain.StreakStore) ServiceOption {
	return func(s *Service) { s.streaks = st }
}

// WithNotifier enables level-up and achievement notifications.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) { s.notifier = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the timezone that defines a calendar day.
func WithLocation(loc *time.Location) ServiceOption {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithMaxRetries sets the conflict retry budget.
func WithMaxRetries(n int) ServiceOption {
	return func(s *Service) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// NewService creates a progression service.
func NewService(engine *Engine, store domain.ProgressionStore, log zerolog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		engine:     engine,
		store:      store,
		log:        log.With().Str("component", "progression").Logger(),
		now:        time.Now,
		loc:        time.UTC,
		maxRetries: DefaultMaxRetries,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Engine returns the underlying engine.
func (s *Service) Engine() *Engine { return s.engine }

func (s *Service) clock() time.Time { return s.now().In(s.loc) }

// logger prefers the request-scoped logger carried by ctx.
func (s *Service) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.log
}

// ─── State access ───────────────────────────────────────────────────────────

// withState locks userID, then loads, applies fn and saves. fn runs again on
// fresh state after every conflict, so it must derive everything from its
// argument. Nothing is persisted when fn or the save fails.
func (s *Service) withState(ctx context.Context, userID string, fn func(domain.ProgressionState) (domain.ProgressionState, error)) (domain.ProgressionState, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()
	return s.withStateLocked(ctx, userID, fn)
}

func (s *Service) withStateLocked(ctx context.Context, userID string, fn func(domain.ProgressionState) (domain.ProgressionState, error)) (domain.ProgressionState, error) {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.ProgressionState{}, err
		}

		state, err := s.load(ctx, userID)
		if err != nil {
			return domain.ProgressionState{}, err
		}

		next, err := fn(state)
		if errors.Is(err, errNoChange) {
			return state, nil
		}
		if err != nil {
			return state, err
		}

		saved, err := s.store.Save(ctx, next)
		if errors.Is(err, domain.ErrStaleState) {
			metrics.StateConflicts.Inc()
			if attempt >= s.maxRetries {
				return state, fmt.Errorf("save %s after %d attempts: %w", userID, attempt+1, err)
			}
			s.logger(ctx).Debug().Str("user_id", userID).Int("attempt", attempt+1).Msg("state conflict, retrying")
			continue
		}
		if err != nil {
			return state, fmt.Errorf("save %s: %w", userID, err)
		}
		return saved, nil
	}
}

// load returns the stored state, or a fresh one for unknown users.
func (s *Service) load(ctx context.Context, userID string) (domain.ProgressionState, error) {
	state, err := s.store.Load(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.NewProgressionState(userID), nil
	}
	if err != nil {
		return domain.ProgressionState{}, fmt.Errorf("load %s: %w", userID, err)
	}
	return state, nil
}

// ─── Grants ─────────────────────────────────────────────────────────────────

// GrantRequest is a reward request from a caller. A nil BaseAmount uses the
// catalog base. Nil context fields are derived: StreakDays from the stored
// streak, IsWeekend from the service clock, and IsFirstActionToday from the
// day of the user's last committed grant.
type GrantRequest struct {
	Source             string                `json:"source"`
	BaseAmount         *int                  `json:"base_amount,omitempty"`
	Multiplier         domain.MultiplierKind `json:"multiplier"`
	IsPremium          bool                  `json:"is_premium"`
	StreakDays         *int                  `json:"streak_days,omitempty"`
	IsWeekend          *bool                 `json:"is_weekend,omitempty"`
	IsFirstActionToday *bool                 `json:"is_first_action_today,omitempty"`
}

// Grant applies one reward to userID and persists the result.
func (s *Service) Grant(ctx context.Context, userID string, req GrantRequest) (GrantResult, error) {
	start := time.Now()
	defer func() { metrics.GrantLatency.Observe(time.Since(start).Seconds()) }()

	uid, err := domain.NormalizeUserID(userID)
	if err != nil {
		return GrantResult{}, err
	}

	unlock := s.locks.Lock(uid)
	defer unlock()

	now := s.clock()
	rc, err := s.rewardContext(ctx, uid, req, now)
	if err != nil {
		return GrantResult{}, err
	}
	ev := domain.RewardEvent{
		Source:     req.Source,
		BaseAmount: req.BaseAmount,
		Multiplier: req.Multiplier,
		Context:    rc,
	}

	today := DayKey(now)

	var res GrantResult
	_, err = s.withStateLocked(ctx, uid, func(st domain.ProgressionState) (domain.ProgressionState, error) {
		e := ev
		if req.IsFirstActionToday == nil {
			e.Context.IsFirstActionToday = st.LastGrantDay != today
		}
		next, r, err := s.engine.GrantReward(st, e, now)
		res = r
		if err != nil {
			return st, err
		}
		if r.BaseAmount == 0 {
			return st, errNoChange
		}
		next.LastGrantDay = today
		return next, nil
	})
	if err != nil {
		metrics.GrantsRejected.WithLabelValues(rejectReason(err)).Inc()
		return res, err
	}

	s.observeGrant(res)
	s.logger(ctx).Info().
		Str("user_id", uid).
		Str("source", res.Source).
		Int("effective", res.EffectiveAmount).
		Int("granted", res.GrantedAmount).
		Bool("clamped", res.Clamped).
		Int("level", res.Display.Level).
		Msg("xp granted")
	s.notifyLevels(ctx, uid, res.Level)
	return res, nil
}

// rewardContext fills the context fields that do not depend on the
// progression state. IsFirstActionToday is resolved per attempt in Grant.
func (s *Service) rewardContext(ctx context.Context, uid string, req GrantRequest, now time.Time) (domain.RewardContext, error) {
	rc := domain.RewardContext{IsPremium: req.IsPremium}

	if req.IsWeekend != nil {
		rc.IsWeekend = *req.IsWeekend
	} else {
		rc.IsWeekend = IsWeekend(now)
	}

	if req.IsFirstActionToday != nil {
		rc.IsFirstActionToday = *req.IsFirstActionToday
	}

	switch {
	case req.StreakDays != nil:
		rc.StreakDays = *req.StreakDays
	case s.streaks != nil:
		streak, err := s.streaks.GetStreak(ctx, uid)
		if err != nil {
			return rc, fmt.Errorf("get streak %s: %w", uid, err)
		}
		rc.StreakDays = ActiveStreakDays(streak, now)
	}
	return rc, nil
}

func (s *Service) observeGrant(res GrantResult) {
	metrics.XPGranted.WithLabelValues(res.Source).Add(float64(res.GrantedAmount))
	if res.Clamped {
		bucket := res.Source
		if def, ok := s.engine.Catalog().Source(res.Source); ok && def.Capped() {
			bucket = def.CapBucket
		}
		metrics.XPClamped.WithLabelValues(bucket).Add(float64(res.EffectiveAmount - res.GrantedAmount))
	}
	if res.Level.LevelsGained > 0 {
		metrics.LevelUps.Add(float64(res.Level.LevelsGained))
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrUnknownSource):
		return "unknown_source"
	case errors.Is(err, domain.ErrUnknownMultiplier):
		return "unknown_multiplier"
	case errors.Is(err, domain.ErrStaleState):
		return "stale_state"
	default:
		return "error"
	}
}

// ─── Achievements ───────────────────────────────────────────────────────────

// UnlockAchievement unlocks an achievement for userID. Repeated unlocks
// succeed with WasNewUnlock false and change nothing.
func (s *Service) UnlockAchievement(ctx context.Context, userID, achievementID string) (AchievementResult, error) {
	uid, err := domain.NormalizeUserID(userID)
	if err != nil {
		return AchievementResult{}, err
	}
	now := s.clock()

	var res AchievementResult
	_, err = s.withState(ctx, uid, func(st domain.ProgressionState) (domain.ProgressionState, error) {
		next, r, err := s.engine.UnlockAchievement(st, achievementID, now)
		res = r
		if err != nil {
			return st, err
		}
		if !r.WasNewUnlock {
			return st, errNoChange
		}
		return next, nil
	})
	if err != nil {
		return res, err
	}
	if !res.WasNewUnlock {
		return res, nil
	}

	metrics.AchievementsUnlocked.WithLabelValues(achievementID).Inc()
	for _, m := range res.Milestones {
		s.observeGrant(m)
	}
	if res.Level.LevelsGained > 0 {
		metrics.LevelUps.Add(float64(res.Level.LevelsGained))
	}
	s.logger(ctx).Info().
		Str("user_id", uid).
		Str("achievement", achievementID).
		Int("milestones", len(res.Milestones)).
		Int("level", res.Display.Level).
		Msg("achievement unlocked")

	if def, ok := s.engine.Catalog().Achievement(achievementID); ok {
		s.notify(ctx, notifyAchievement(uid, def))
	}
	s.notifyLevels(ctx, uid, res.Total)
	return res, nil
}

// AckRecentUnlocks clears the user's unacknowledged unlock queue and returns
// how many events were cleared.
func (s *Service) AckRecentUnlocks(ctx context.Context, userID string) (int, error) {
	uid, err := domain.NormalizeUserID(userID)
	if err != nil {
		return 0, err
	}
	cleared := 0
	_, err = s.withState(ctx, uid, func(st domain.ProgressionState) (domain.ProgressionState, error) {
		cleared = len(st.RecentUnlocks)
		if cleared == 0 {
			return st, errNoChange
		}
		return AckRecentUnlocks(st), nil
	})
	return cleared, err
}

// ─── Rehydrate & status ─────────────────────────────────────────────────────

// Rehydrate replaces the user's level and XP with those derived from a
// persisted lifetime total. Unlocks and cap usage are kept.
func (s *Service) Rehydrate(ctx context.Context, userID string, totalXP int) (domain.Display, error) {
	fresh, disp, err := s.engine.Rehydrate(userID, totalXP)
	if err != nil {
		return domain.Display{}, err
	}
	_, err = s.withState(ctx, fresh.UserID, func(st domain.ProgressionState) (domain.ProgressionState, error) {
		next := st.Clone()
		next.Level, next.CurrentXP, next.TotalXP = fresh.Level, fresh.CurrentXP, fresh.TotalXP
		return next, nil
	})
	if err != nil {
		return domain.Display{}, err
	}
	s.logger(ctx).Info().Str("user_id", fresh.UserID).Int("total_xp", totalXP).Int("level", disp.Level).Msg("progression rehydrated")
	return disp, nil
}

// UnlockedAchievement is an earned achievement with its unlock time.
type UnlockedAchievement struct {
	domain.AchievementDef
	UnlockedAt time.Time `json:"unlocked_at"`
}

// Status is a read-only snapshot of a user's progression.
type Status struct {
	UserID        string                `json:"user_id"`
	Display       domain.Display        `json:"display"`
	Unlocked      []UnlockedAchievement `json:"unlocked"`
	RecentUnlocks []domain.UnlockEvent  `json:"recent_unlocks"`
	TodayUsage    map[string]int        `json:"today_usage"`
	Caps          map[string]int        `json:"caps"`
	Streak        *domain.Streak        `json:"streak,omitempty"`
	LastLevelUpAt *time.Time            `json:"last_level_up_at,omitempty"`
}

// Status returns the user's progression without modifying it. Unknown users
// report the initial state.
func (s *Service) Status(ctx context.Context, userID string) (Status, error) {
	uid, err := domain.NormalizeUserID(userID)
	if err != nil {
		return Status{}, err
	}
	st, err := s.load(ctx, uid)
	if err != nil {
		return Status{}, err
	}
	now := s.clock()

	out := Status{
		UserID:        uid,
		Display:       DisplayFor(st),
		RecentUnlocks: append([]domain.UnlockEvent{}, st.RecentUnlocks...),
		TodayUsage:    TodayUsage(st, now),
		Caps:          s.engine.Catalog().Caps(),
		LastLevelUpAt: st.LastLevelUpAt,
	}
	for id, at := range st.Unlocked {
		def, ok := s.engine.Catalog().Achievement(id)
		if !ok {
			def = domain.AchievementDef{ID: id, Name: id}
		}
		out.Unlocked = append(out.Unlocked, UnlockedAchievement{AchievementDef: def, UnlockedAt: at})
	}
	sort.Slice(out.Unlocked, func(i, j int) bool {
		return out.Unlocked[i].UnlockedAt.Before(out.Unlocked[j].UnlockedAt)
	})

	if s.streaks != nil {
		streak, err := s.streaks.GetStreak(ctx, uid)
		if err != nil {
			return Status{}, fmt.Errorf("get streak %s: %w", uid, err)
		}
		out.Streak = &streak
	}
	return out, nil
}

// ─── Activity & streaks ─────────────────────────────────────────────────────

// ActivityResult reports a recorded day of activity.
type ActivityResult struct {
	Streak domain.Streak `json:"streak"`
	Update StreakUpdate  `json:"update"`
	Grants []GrantResult `json:"grants,omitempty"`
}

// RecordActivity counts today toward the user's streak. The first activity
// of a day grants daily_login; reaching 3, 7, 14 or 30 days grants the
// matching streak source.
func (s *Service) RecordActivity(ctx context.Context, userID string) (ActivityResult, error) {
	if s.streaks == nil {
		return ActivityResult{}, errors.New("streak tracking is not enabled")
	}
	uid, err := domain.NormalizeUserID(userID)
	if err != nil {
		return ActivityResult{}, err
	}

	unlock := s.locks.Lock(uid)
	defer unlock()

	now := s.clock()
	var (
		streak domain.Streak
		up     StreakUpdate
	)
	for attempt := 0; ; attempt++ {
		prev, err := s.streaks.GetStreak(ctx, uid)
		if err != nil {
			return ActivityResult{}, fmt.Errorf("get streak %s: %w", uid, err)
		}
		prev.UserID = uid
		streak, up = RecordActivity(prev, now)
		if !up.FirstToday {
			return ActivityResult{Streak: streak, Update: up}, nil
		}

		// The streak is committed before the grants it triggers: a failed
		// grant is lost rather than paid twice. Losing the race means another
		// writer already recorded today and paid for it.
		err = s.streaks.SaveStreak(ctx, prev, streak)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrStaleState) || attempt >= s.maxRetries {
			return ActivityResult{Streak: streak, Update: up}, fmt.Errorf("save streak %s: %w", uid, err)
		}
		metrics.StateConflicts.Inc()
		s.logger(ctx).Debug().Str("user_id", uid).Int("attempt", attempt+1).Msg("streak conflict, retrying")
	}
	res := ActivityResult{Streak: streak, Update: up}

	sources := s.activitySources(up)
	var total LevelResult
	_, err = s.withStateLocked(ctx, uid, func(st domain.ProgressionState) (domain.ProgressionState, error) {
		res.Grants = res.Grants[:0]
		total = LevelResult{}
		next := st
		for _, src := range sources {
			var gr GrantResult
			var err error
			next, gr, err = s.engine.GrantReward(next, domain.RewardEvent{Source: src}, now)
			if err != nil {
				return st, fmt.Errorf("grant %s: %w", src, err)
			}
			res.Grants = append(res.Grants, gr)
			total = total.merge(gr.Level)
		}
		return next, nil
	})
	if err != nil {
		return res, err
	}

	for _, gr := range res.Grants {
		s.observeGrant(gr)
	}
	s.logger(ctx).Info().
		Str("user_id", uid).
		Int("streak_days", streak.CurrentDays).
		Bool("freeze_spent", up.FreezeSpent).
		Int("grants", len(res.Grants)).
		Msg("activity recorded")
	s.notifyLevels(ctx, uid, total)
	return res, nil
}

// activitySources lists the reward sources earned by a streak update that
// exist in the catalog.
func (s *Service) activitySources(up StreakUpdate) []string {
	var out []string
	cat := s.engine.Catalog()
	if _, ok := cat.Source(catalog.SourceDailyLogin); ok {
		out = append(out, catalog.SourceDailyLogin)
	}
	for _, days := range up.Crossed {
		for _, m := range catalog.StreakMilestones() {
			if m.Count != days {
				continue
			}
			if _, ok := cat.Source(m.Source); ok {
				out = append(out, m.Source)
			}
		}
	}
	return out
}

// ─── Maintenance ────────────────────────────────────────────────────────────

// PruneAll drops stale daily cap entries for every user and returns how many
// users changed.
func (s *Service) PruneAll(ctx context.Context) (int, error) {
	ids, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}
	now := s.clock()
	pruned := 0
	for _, id := range ids {
		changed := false
		_, err := s.withState(ctx, id, func(st domain.ProgressionState) (domain.ProgressionState, error) {
			next := Prune(st, now)
			if len(next.DailyXP) == len(st.DailyXP) {
				return st, errNoChange
			}
			changed = true
			return next, nil
		})
		if err != nil {
			return pruned, fmt.Errorf("prune %s: %w", id, err)
		}
		if changed {
			pruned++
		}
	}
	metrics.DailyBucketsPruned.Add(float64(pruned))
	s.log.Debug().Int("users", len(ids)).Int("pruned", pruned).Msg("daily caps pruned")
	return pruned, nil
}

// ─── Notifications ──────────────────────────────────────────────────────────

func (s *Service) notifyLevels(ctx context.Context, uid string, lr LevelResult) {
	if !lr.LeveledUp {
		return
	}
	info := LevelInfoFor(lr.LevelAfter)
	s.notify(ctx, notifyLevelUp(uid, lr.LevelAfter, info))
	for _, lvl := range lr.MilestoneLevels {
		s.notify(ctx, notifyMilestone(uid, lvl, LevelInfoFor(lvl)))
	}
}

// notify delivers n. Failures are logged, never returned: the XP is
// already committed.
func (s *Service) notify(ctx context.Context, n domain.Notification) {
	if s.notifier == nil {
		return
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.clock()
	}
	if _, err := s.notifier.Notify(ctx, n); err != nil {
		s.logger(ctx).Warn().Err(err).Str("user_id", n.UserID).Str("type", string(n.Type)).Msg("notification failed")
	}
}

func notifyLevelUp(uid string, level int, info domain.LevelInfo) domain.Notification {
	return domain.Notification{
		UserID: uid,
		Type:   domain.NotifyLevelUp,
		Title:  fmt.Sprintf("Level %d reached %s", level, info.Emoji),
		Body:   fmt.Sprintf("You are now %s.", info.Title),
	}
}

func notifyMilestone(uid string, level int, info domain.LevelInfo) domain.Notification {
	return domain.Notification{
		UserID: uid,
		Type:   domain.NotifyMilestone,
		Title:  fmt.Sprintf("Milestone: level %d", level),
		Body:   fmt.Sprintf("%s %s. Keep going!", info.Emoji, info.Title),
	}
}

func notifyAchievement(uid string, def domain.AchievementDef) domain.Notification {
	title := def.Name
	if def.Icon != "" {
		title = def.Icon + " " + def.Name
	}
	return domain.Notification{
		UserID: uid,
		Type:   domain.NotifyAchievement,
		Title:  title,
		Body:   fmt.Sprintf("Achievement unlocked: +%d XP", def.BonusXP),
	}
}
