package progression

import (
	"time"

	"github.com/nutrio/nutrio/internal/app/catalog"
	"github.com/nutrio/nutrio/internal/domain"
)

// DayKeyLayout is the calendar-day key used in ProgressionState.DailyXP.
const DayKeyLayout = "2006-01-02"

// DayKey returns the calendar day of t in t's own location.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// DailyCapEnforcer clamps repeatable low-effort sources to a per-day ceiling.
// Sources without a cap bucket pass through untouched.
type DailyCapEnforcer struct {
	cat *catalog.Catalog
}

// NewDailyCapEnforcer creates an enforcer backed by the catalog's cap table.
func NewDailyCapEnforcer(cat *catalog.Catalog) *DailyCapEnforcer {
	return &DailyCapEnforcer{cat: cat}
}

// bucketFor returns the cap bucket and its ceiling for source, or ok=false
// when the source is uncapped.
func (e *DailyCapEnforcer) bucketFor(source string) (bucket string, limit int, ok bool) {
	def, found := e.cat.Source(source)
	if !found || !def.Capped() {
		return "", 0, false
	}
	limit, ok = e.cat.Cap(def.CapBucket)
	if !ok {
		return "", 0, false
	}
	return def.CapBucket, limit, true
}

// ClampForCap returns how much of proposed may be granted today.
// Only today's entry is consulted; older days are inert.
func (e *DailyCapEnforcer) ClampForCap(source string, proposed int, state domain.ProgressionState, today time.Time) int {
	bucket, limit, ok := e.bucketFor(source)
	if !ok {
		return proposed
	}
	already := state.DailyXP[DayKey(today)][bucket]
	if already+proposed > limit {
		if rest := limit - already; rest > 0 {
			return rest
		}
		return 0
	}
	return proposed
}

// Used returns the XP already accrued today against source's bucket and the
// bucket's cap. ok is false for uncapped sources.
func (e *DailyCapEnforcer) Used(source string, state domain.ProgressionState, today time.Time) (used, limit int, ok bool) {
	bucket, limit, ok := e.bucketFor(source)
	if !ok {
		return 0, 0, false
	}
	return state.DailyXP[DayKey(today)][bucket], limit, true
}

// Record adds the actual (post-clamp) amount to today's bucket. The input
// state is not modified.
func (e *DailyCapEnforcer) Record(state domain.ProgressionState, source string, actual int, today time.Time) domain.ProgressionState {
	bucket, _, ok := e.bucketFor(source)
	if !ok || actual <= 0 {
		return state
	}
	next := state.Clone()
	day := DayKey(today)
	if next.DailyXP[day] == nil {
		next.DailyXP[day] = make(map[string]int)
	}
	next.DailyXP[day][bucket] += actual
	return next
}

// Prune drops every DailyXP entry that is not today's.
func Prune(state domain.ProgressionState, today time.Time) domain.ProgressionState {
	day := DayKey(today)
	stale := false
	for k := range state.DailyXP {
		if k != day {
			stale = true
			break
		}
	}
	if !stale {
		return state
	}
	next := state.Clone()
	for k := range next.DailyXP {
		if k != day {
			delete(next.DailyXP, k)
		}
	}
	return next
}

// TodayUsage returns a copy of today's bucket totals.
func TodayUsage(state domain.ProgressionState, today time.Time) map[string]int {
	out := make(map[string]int)
	for b, v := range state.DailyXP[DayKey(today)] {
		out[b] = v
	}
	return out
}
