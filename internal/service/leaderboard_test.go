package service

import (
	"strings"
	"testing"
	"time"

	"github.com/set-night/orderboard/internal/domain"
)

func TestBuildLeaderboard(t *testing.T) {
	ledger := domain.PeriodLedger{
		"m3": {TotalPoints: 25},
		"m1": {TotalPoints: 50},
		"m2": {TotalPoints: 25},
		"m4": {TotalPoints: 0, Completions: map[string]int{"hunt": 2}},
	}
	names := map[string]string{"m1": "Alice", "m2": "Bob"}

	board := BuildLeaderboard(domain.PeriodWeekly, ledger, names)
	if len(board.Entries) != 3 {
		t.Fatalf("expected zero totals skipped, got %d entries", len(board.Entries))
	}

	want := []struct {
		id    string
		name  string
		rank  int
		share string
	}{
		{"m1", "Alice", 1, "50"},
		{"m2", "Bob", 2, "25"},
		{"m3", "User m3", 3, "25"},
	}
	for i, w := range want {
		e := board.Entries[i]
		if e.MemberID != w.id || e.DisplayName != w.name || e.Rank != w.rank {
			t.Fatalf("entry %d: expected %+v, got %+v", i, w, e)
		}
		if e.Share.String() != w.share {
			t.Fatalf("entry %d: expected share %s, got %s", i, w.share, e.Share)
		}
	}
}

func TestBuildLeaderboardShareRounding(t *testing.T) {
	ledger := domain.PeriodLedger{
		"m1": {TotalPoints: 1},
		"m2": {TotalPoints: 2},
	}
	board := BuildLeaderboard(domain.PeriodMonthly, ledger, nil)
	if got := board.Entries[0].Share.String(); got != "66.7" {
		t.Fatalf("expected 66.7, got %s", got)
	}
	if got := board.Entries[1].Share.String(); got != "33.3" {
		t.Fatalf("expected 33.3, got %s", got)
	}
}

func TestBuildLeaderboardEmpty(t *testing.T) {
	board := BuildLeaderboard(domain.PeriodWeekly, domain.PeriodLedger{}, nil)
	if board.Entries == nil || len(board.Entries) != 0 {
		t.Fatalf("expected empty non-nil entries, got %#v", board.Entries)
	}
}

func TestBoardTitles(t *testing.T) {
	s := testSchedule()
	now := time.Date(2025, 3, 13, 8, 5, 0, 0, berlin)

	weekly := s.LiveBoard(domain.PeriodWeekly, nil, nil, now)
	if weekly.Title != "📅 Weekly Leaderboard" {
		t.Fatalf("unexpected weekly title %q", weekly.Title)
	}
	if weekly.Footer != "Resets every Monday at 19:00 (next: 17.03.2025 19:00) · Last updated: 13.03.2025 08:05" {
		t.Fatalf("unexpected weekly footer %q", weekly.Footer)
	}

	monthly := s.LiveBoard(domain.PeriodMonthly, nil, nil, now)
	if !strings.HasPrefix(monthly.Footer, "Resets on the 1st of each month at 20:00 (next: 01.04.2025 20:00)") {
		t.Fatalf("unexpected monthly footer %q", monthly.Footer)
	}

	if got := s.FinalTitle(domain.PeriodWeekly, time.Date(2025, 3, 10, 19, 0, 0, 0, berlin)); got != "📅 FINAL STANDINGS - Week ending 10.03.2025" {
		t.Fatalf("unexpected weekly final title %q", got)
	}
	if got := s.FinalTitle(domain.PeriodMonthly, time.Date(2025, 4, 1, 20, 0, 0, 0, berlin)); got != "🗓️ FINAL STANDINGS - March 2025" {
		t.Fatalf("unexpected monthly final title %q", got)
	}

	archived := s.ArchiveBoard(domain.LeaderboardArchive{
		Period:     domain.PeriodWeekly,
		Title:      "t",
		ArchivedAt: time.Date(2025, 3, 10, 18, 0, 30, 0, time.UTC),
	}, nil)
	if !archived.Archived || archived.Footer != "Archived on 10.03.2025 at 19:00" {
		t.Fatalf("unexpected archive board %+v", archived)
	}
}
