package progression

import (
	"fmt"
	"time"

	"github.com/nutrio/nutrio/internal/domain"
)

// StreakUpdate describes what one recorded activity did to a streak.
type StreakUpdate struct {
	FirstToday  bool  `json:"first_today"`
	FreezeSpent bool  `json:"freeze_spent"`
	Broken      bool  `json:"broken"`
	Crossed     []int `json:"crossed,omitempty"` // day counts reached by this update
}

// RecordActivity counts day toward the streak.
// Same day: no-op. Next day: extend. One missed day: spend the free weekly
// freeze if this ISO week's is unused, else reset. Longer gaps reset silently.
func RecordActivity(s domain.Streak, day time.Time) (domain.Streak, StreakUpdate) {
	var up StreakUpdate
	today := startOfDay(day)

	// Same day, or an out-of-order activity older than the last one.
	if !s.LastDate.IsZero() && daysBetween(s.LastDate.In(day.Location()), today) <= 0 {
		return s, up
	}
	up.FirstToday = true
	before := s.CurrentDays

	if s.LastDate.IsZero() {
		s.CurrentDays = 1
	} else {
		switch gap := daysBetween(s.LastDate.In(day.Location()), today); {
		case gap <= 1:
			s.CurrentDays++
		case gap == 2:
			week := isoWeek(today)
			if s.FreezeWeekISO != week {
				s.FreezeWeekISO = week
				s.CurrentDays++
				up.FreezeSpent = true
			} else {
				s.CurrentDays = 1
				up.Broken = true
			}
		default:
			s.CurrentDays = 1
			up.Broken = true
		}
	}

	s.LastDate = today
	if s.CurrentDays > s.LongestDays {
		s.LongestDays = s.CurrentDays
	}
	if s.CurrentDays > before {
		up.Crossed = []int{s.CurrentDays}
	}
	return s, up
}

// ActiveStreakDays returns the streak length still valid on day: the stored
// count if the last activity was today or yesterday, otherwise 0.
func ActiveStreakDays(s domain.Streak, day time.Time) int {
	if s.LastDate.IsZero() {
		return 0
	}
	if daysBetween(s.LastDate.In(day.Location()), startOfDay(day)) > 1 {
		return 0
	}
	return s.CurrentDays
}

// IsWeekend reports whether t falls on Saturday or Sunday in its location.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b, ignoring DST shifts.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// isoWeek returns "YYYY-Www" for the given time.
func isoWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
