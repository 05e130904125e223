package progression_test

import (
	"testing"
	"time"

	"github.com/nutrio/nutrio/internal/app/progression"
	"github.com/nutrio/nutrio/internal/domain"
)

func TestStreak_FirstActivity(t *testing.T) {
	day := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	s, up := progression.RecordActivity(domain.Streak{UserID: "u1"}, day)

	if s.CurrentDays != 1 {
		t.Errorf("expected 1 day, got %d", s.CurrentDays)
	}
	if s.LongestDays != 1 {
		t.Errorf("expected longest 1, got %d", s.LongestDays)
	}
	if !up.FirstToday {
		t.Error("first activity should count as first today")
	}
}

func TestStreak_ConsecutiveDays(t *testing.T) {
	base := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	var s domain.Streak
	var up progression.StreakUpdate
	for i := 0; i < 5; i++ {
		s, up = progression.RecordActivity(s, base.AddDate(0, 0, i))
	}
	if s.CurrentDays != 5 {
		t.Errorf("expected 5 consecutive, got %d", s.CurrentDays)
	}
	if len(up.Crossed) != 1 || up.Crossed[0] != 5 {
		t.Errorf("crossed = %v, want [5]", up.Crossed)
	}
}

func TestStreak_SameDayIdempotent(t *testing.T) {
	day := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	s, _ := progression.RecordActivity(domain.Streak{}, day)
	s, up := progression.RecordActivity(s, day.Add(2*time.Hour))
	s, _ = progression.RecordActivity(s, day.Add(5*time.Hour))

	if s.CurrentDays != 1 {
		t.Errorf("expected 1 (idempotent), got %d", s.CurrentDays)
	}
	if up.FirstToday {
		t.Error("second activity of the day is not first today")
	}
}

func TestStreak_OutOfOrderIgnored(t *testing.T) {
	day := time.Date(2025, 7, 3, 10, 0, 0, 0, time.UTC)
	s, _ := progression.RecordActivity(domain.Streak{}, day)
	s, up := progression.RecordActivity(s, day.AddDate(0, 0, -1))
	if s.CurrentDays != 1 || up.FirstToday {
		t.Errorf("older activity should be ignored, got %+v %+v", s, up)
	}
}

func TestStreak_BrokenSilently(t *testing.T) {
	day1 := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	var s domain.Streak
	s, _ = progression.RecordActivity(s, day1)
	s, _ = progression.RecordActivity(s, day1.AddDate(0, 0, 1))
	s, _ = progression.RecordActivity(s, day1.AddDate(0, 0, 2))

	// Gap of 3 days: streak breaks
	s, up := progression.RecordActivity(s, day1.AddDate(0, 0, 6))

	if s.CurrentDays != 1 {
		t.Errorf("expected streak reset to 1, got %d", s.CurrentDays)
	}
	if s.LongestDays != 3 {
		t.Errorf("expected longest preserved at 3, got %d", s.LongestDays)
	}
	if !up.Broken {
		t.Error("expected Broken")
	}
}

func TestStreak_FreezeOnMissedDay(t *testing.T) {
	day1 := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC) // Monday
	var s domain.Streak
	s, _ = progression.RecordActivity(s, day1)
	s, _ = progression.RecordActivity(s, day1.AddDate(0, 0, 1))

	// Skip 1 day: freeze should auto-apply
	s, up := progression.RecordActivity(s, day1.AddDate(0, 0, 3))

	if s.CurrentDays != 3 {
		t.Errorf("expected 3 (freeze applied), got %d", s.CurrentDays)
	}
	if !up.FreezeSpent {
		t.Error("expected freeze to be spent")
	}
	if s.FreezeWeekISO != "2025-W27" {
		t.Errorf("expected freeze week 2025-W27, got %s", s.FreezeWeekISO)
	}
}

func TestStreak_FreezeOncePerWeek(t *testing.T) {
	day1 := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC) // Monday
	var s domain.Streak
	s, _ = progression.RecordActivity(s, day1)
	s, _ = progression.RecordActivity(s, day1.AddDate(0, 0, 2)) // freeze spent (Wed)
	s, _ = progression.RecordActivity(s, day1.AddDate(0, 0, 4)) // same week, no freeze left

	if s.CurrentDays != 1 {
		t.Errorf("expected reset after second miss in a week, got %d", s.CurrentDays)
	}

	// Next ISO week gets a fresh freeze
	s, _ = progression.RecordActivity(s, day1.AddDate(0, 0, 5))
	s, up := progression.RecordActivity(s, day1.AddDate(0, 0, 7)) // Mon of W28
	if !up.FreezeSpent || s.CurrentDays != 3 {
		t.Errorf("expected new week freeze, got %+v %+v", s, up)
	}
}

func TestStreak_LocalCalendarDays(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	late := time.Date(2025, 7, 1, 23, 30, 0, 0, loc)
	early := time.Date(2025, 7, 2, 0, 30, 0, 0, loc)

	s, _ := progression.RecordActivity(domain.Streak{}, late)
	s, up := progression.RecordActivity(s, early)
	if s.CurrentDays != 2 || !up.FirstToday {
		t.Errorf("midnight in local time starts a new day, got %+v", s)
	}
}

func TestActiveStreakDays(t *testing.T) {
	day := time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC)
	s := domain.Streak{CurrentDays: 8, LastDate: time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)}

	if got := progression.ActiveStreakDays(s, day); got != 8 {
		t.Errorf("yesterday's streak is still active, got %d", got)
	}
	if got := progression.ActiveStreakDays(s, day.AddDate(0, 0, 2)); got != 0 {
		t.Errorf("lapsed streak should be 0, got %d", got)
	}
	if got := progression.ActiveStreakDays(domain.Streak{}, day); got != 0 {
		t.Errorf("empty streak should be 0, got %d", got)
	}
}

func TestIsWeekend(t *testing.T) {
	sat := time.Date(2025, 7, 5, 12, 0, 0, 0, time.UTC)
	mon := time.Date(2025, 7, 7, 12, 0, 0, 0, time.UTC)
	if !progression.IsWeekend(sat) || !progression.IsWeekend(sat.AddDate(0, 0, 1)) {
		t.Error("Saturday and Sunday are weekend")
	}
	if progression.IsWeekend(mon) {
		t.Error("Monday is not weekend")
	}
}
