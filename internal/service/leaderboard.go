package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/set-night/orderboard/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// BuildLeaderboard ranks members by total points, highest first. Members
// with zero points are left out; ties are broken by member id.
func BuildLeaderboard(period domain.Period, ledger domain.PeriodLedger, names map[string]string) domain.Leaderboard {
	board := domain.Leaderboard{Period: period, Entries: []domain.LeaderboardEntry{}}

	var sum int64
	for id, rec := range ledger {
		if rec.TotalPoints == 0 {
			continue
		}
		sum += rec.TotalPoints
		board.Entries = append(board.Entries, domain.LeaderboardEntry{
			MemberID:    id,
			DisplayName: DisplayName(names, id),
			Points:      rec.TotalPoints,
		})
	}

	sort.Slice(board.Entries, func(i, j int) bool {
		a, b := board.Entries[i], board.Entries[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		return a.MemberID < b.MemberID
	})

	total := decimal.NewFromInt(sum)
	for i := range board.Entries {
		e := &board.Entries[i]
		e.Rank = i + 1
		if sum > 0 {
			e.Share = decimal.NewFromInt(e.Points).Mul(hundred).Div(total).Round(1)
		}
	}
	return board
}

// LiveBoard is the standing that is edited in place until the next reset.
func (s Schedule) LiveBoard(period domain.Period, ledger domain.PeriodLedger, names map[string]string, now time.Time) domain.Leaderboard {
	board := BuildLeaderboard(period, ledger, names)
	updated := now.In(s.loc()).Format("02.01.2006 15:04")
	next := s.NextBoundary(period, now).Format("02.01.2006 15:04")

	switch period {
	case domain.PeriodMonthly:
		board.Title = "🗓️ Monthly Leaderboard"
		board.Footer = fmt.Sprintf("Resets on the 1st of each month at %02d:%02d (next: %s) · Last updated: %s",
			s.MonthlyHour, s.MonthlyMinute, next, updated)
	default:
		board.Title = "📅 Weekly Leaderboard"
		board.Footer = fmt.Sprintf("Resets every %s at %02d:%02d (next: %s) · Last updated: %s",
			s.WeeklyWeekday, s.WeeklyHour, s.WeeklyMinute, next, updated)
	}
	return board
}

// FinalTitle names the archive of the period that ended at boundary.
func (s Schedule) FinalTitle(period domain.Period, boundary time.Time) string {
	local := boundary.In(s.loc())
	if period == domain.PeriodMonthly {
		// The boundary is the first of the new month.
		return "🗓️ FINAL STANDINGS - " + local.AddDate(0, 0, -1).Format("January 2006")
	}
	return "📅 FINAL STANDINGS - Week ending " + local.Format("02.01.2006")
}

// ArchiveBoard renders an archived snapshot.
func (s Schedule) ArchiveBoard(archive domain.LeaderboardArchive, names map[string]string) domain.Leaderboard {
	board := BuildLeaderboard(archive.Period, archive.Snapshot, names)
	board.Title = archive.Title
	board.Footer = "Archived on " + archive.ArchivedAt.In(s.loc()).Format("02.01.2006 at 15:04")
	board.Archived = true
	return board
}
