package service

import (
	"time"

	"github.com/set-night/orderboard/internal/domain"
)

// Schedule holds the reset boundaries. All times are civil times in Location.
type Schedule struct {
	Location      *time.Location
	WeeklyWeekday time.Weekday
	WeeklyHour    int
	WeeklyMinute  int
	MonthlyHour   int
	MonthlyMinute int
}

func (s Schedule) loc() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// LastBoundary is the most recent reset boundary of period at or before now.
func (s Schedule) LastBoundary(period domain.Period, now time.Time) time.Time {
	local := now.In(s.loc())

	switch period {
	case domain.PeriodMonthly:
		b := time.Date(local.Year(), local.Month(), 1, s.MonthlyHour, s.MonthlyMinute, 0, 0, s.loc())
		if b.After(now) {
			b = time.Date(local.Year(), local.Month()-1, 1, s.MonthlyHour, s.MonthlyMinute, 0, 0, s.loc())
		}
		return b
	default:
		back := (int(local.Weekday()) - int(s.WeeklyWeekday) + 7) % 7
		b := time.Date(local.Year(), local.Month(), local.Day()-back, s.WeeklyHour, s.WeeklyMinute, 0, 0, s.loc())
		if b.After(now) {
			b = time.Date(local.Year(), local.Month(), local.Day()-back-7, s.WeeklyHour, s.WeeklyMinute, 0, 0, s.loc())
		}
		return b
	}
}

// NextBoundary is the first reset boundary of period strictly after now.
func (s Schedule) NextBoundary(period domain.Period, now time.Time) time.Time {
	last := s.LastBoundary(period, now).In(s.loc())

	switch period {
	case domain.PeriodMonthly:
		return time.Date(last.Year(), last.Month()+1, 1, s.MonthlyHour, s.MonthlyMinute, 0, 0, s.loc())
	default:
		return time.Date(last.Year(), last.Month(), last.Day()+7, s.WeeklyHour, s.WeeklyMinute, 0, 0, s.loc())
	}
}
