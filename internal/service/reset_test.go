package service

import (
	"context"
	"testing"
	"time"

	"github.com/set-night/orderboard/internal/domain"
)

func TestFirstCheckRecordsBaseline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ledger.CommitPoints(ctx, domain.PeriodWeekly, "m1", 10); err != nil {
		t.Fatalf("commit: %v", err)
	}

	fired, err := f.resets.CheckDue(ctx, time.Date(2025, 3, 12, 9, 0, 0, 0, berlin))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(fired) != 0 {
		t.Fatalf("a fresh install must not reset, fired %d", len(fired))
	}
	if got := f.record(t, domain.PeriodWeekly, "m1").TotalPoints; got != 10 {
		t.Fatalf("points lost on baseline: %d", got)
	}
}

func TestResetFiresOncePerBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	start := time.Date(2025, 3, 12, 9, 0, 0, 0, berlin) // Wednesday
	if _, err := f.resets.CheckDue(ctx, start); err != nil {
		t.Fatalf("baseline: %v", err)
	}
	if err := f.members.Touch(ctx, domain.Actor{ID: "m1", DisplayName: "Alice"}); err != nil {
		t.Fatalf("touch: %v", err)
	}
	for _, p := range domain.Periods() {
		if _, err := f.ledger.CommitPoints(ctx, p, "m1", 30); err != nil {
			t.Fatalf("commit: %v", err)
		}
		if _, err := f.ledger.ReserveCompletions(ctx, p, "m1", "hunt", 3, 0); err != nil {
			t.Fatalf("reserve: %v", err)
		}
	}

	// Monday 18:59: not yet.
	fired, err := f.resets.CheckDue(ctx, time.Date(2025, 3, 17, 18, 59, 0, 0, berlin))
	if err != nil || len(fired) != 0 {
		t.Fatalf("early check: fired=%d err=%v", len(fired), err)
	}

	boundary := time.Date(2025, 3, 17, 19, 0, 0, 0, berlin)
	fired, err = f.resets.CheckDue(ctx, boundary)
	if err != nil {
		t.Fatalf("check at boundary: %v", err)
	}
	if len(fired) != 1 || fired[0].Period != domain.PeriodWeekly {
		t.Fatalf("expected one weekly reset, got %+v", fired)
	}
	archive := fired[0]
	if archive.Snapshot["m1"].TotalPoints != 30 {
		t.Fatalf("archive snapshot lost points: %+v", archive.Snapshot)
	}
	if archive.Title != "📅 FINAL STANDINGS - Week ending 17.03.2025" {
		t.Fatalf("unexpected archive title %q", archive.Title)
	}
	if archive.ID == "" {
		t.Fatalf("archive id missing")
	}

	weekly := f.record(t, domain.PeriodWeekly, "m1")
	if weekly.TotalPoints != 0 || len(weekly.Completions) != 0 {
		t.Fatalf("weekly not zeroed: %+v", weekly)
	}
	monthly := f.record(t, domain.PeriodMonthly, "m1")
	if monthly.TotalPoints != 30 || monthly.CompletionsFor("hunt") != 3 {
		t.Fatalf("monthly must be untouched: %+v", monthly)
	}

	// Archive board first, then the zeroed live board.
	if len(f.notifier.boards) != 2 {
		t.Fatalf("expected 2 board renders, got %d", len(f.notifier.boards))
	}
	if !f.notifier.boards[0].Archived || f.notifier.boards[0].Entries[0].DisplayName != "Alice" {
		t.Fatalf("expected archived board with names first, got %+v", f.notifier.boards[0])
	}
	if f.notifier.boards[1].Archived || len(f.notifier.boards[1].Entries) != 0 {
		t.Fatalf("expected empty live board second, got %+v", f.notifier.boards[1])
	}
	if len(f.sink.archives) != 1 || f.sink.archives[0].ID != archive.ID {
		t.Fatalf("archive not handed to the sink")
	}

	fired, err = f.resets.CheckDue(ctx, boundary.Add(time.Minute))
	if err != nil || len(fired) != 0 {
		t.Fatalf("reset fired twice: fired=%d err=%v", len(fired), err)
	}
}

func TestResetCatchesUpAfterDowntime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.resets.CheckDue(ctx, time.Date(2025, 3, 12, 9, 0, 0, 0, berlin)); err != nil {
		t.Fatalf("baseline: %v", err)
	}
	if _, err := f.ledger.CommitPoints(ctx, domain.PeriodWeekly, "m1", 8); err != nil {
		t.Fatalf("commit: %v", err)
	}

	// Down from Wednesday until the Tuesday after the boundary passed.
	fired, err := f.resets.CheckDue(ctx, time.Date(2025, 3, 18, 7, 0, 0, 0, berlin))
	if err != nil {
		t.Fatalf("catch-up: %v", err)
	}
	if len(fired) != 1 || fired[0].Snapshot["m1"].TotalPoints != 8 {
		t.Fatalf("expected a single catch-up reset, got %+v", fired)
	}
}

func TestMissedWeeksFireOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.resets.CheckDue(ctx, time.Date(2025, 3, 5, 9, 0, 0, 0, berlin)); err != nil {
		t.Fatalf("baseline: %v", err)
	}

	// Three weekly boundaries and one monthly boundary were missed.
	fired, err := f.resets.CheckDue(ctx, time.Date(2025, 4, 3, 9, 0, 0, 0, berlin))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(fired) != 2 {
		t.Fatalf("expected one weekly and one monthly reset, got %d", len(fired))
	}
	if fired[0].Period != domain.PeriodWeekly || fired[1].Period != domain.PeriodMonthly {
		t.Fatalf("unexpected order %s, %s", fired[0].Period, fired[1].Period)
	}

	archives, err := f.resets.Archives(ctx, domain.PeriodMonthly, 5)
	if err != nil {
		t.Fatalf("archives: %v", err)
	}
	if len(archives) != 1 || archives[0].Title != "🗓️ FINAL STANDINGS - March 2025" {
		t.Fatalf("unexpected monthly archives %+v", archives)
	}
}

func TestResetNotifierFailureKeepsReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.notifier.fail = true

	if _, err := f.resets.CheckDue(ctx, time.Date(2025, 3, 12, 9, 0, 0, 0, berlin)); err != nil {
		t.Fatalf("baseline: %v", err)
	}
	if _, err := f.ledger.CommitPoints(ctx, domain.PeriodWeekly, "m1", 8); err != nil {
		t.Fatalf("commit: %v", err)
	}
	fired, err := f.resets.CheckDue(ctx, time.Date(2025, 3, 17, 19, 1, 0, 0, berlin))
	if err != nil || len(fired) != 1 {
		t.Fatalf("expected reset despite render failure: fired=%d err=%v", len(fired), err)
	}
	if got := f.record(t, domain.PeriodWeekly, "m1").TotalPoints; got != 0 {
		t.Fatalf("expected zeroed total, got %d", got)
	}
}

func TestResetPersistenceFailureRetries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.resets.CheckDue(ctx, time.Date(2025, 3, 12, 9, 0, 0, 0, berlin)); err != nil {
		t.Fatalf("baseline: %v", err)
	}
	if _, err := f.ledger.CommitPoints(ctx, domain.PeriodWeekly, "m1", 8); err != nil {
		t.Fatalf("commit: %v", err)
	}

	now := time.Date(2025, 3, 17, 19, 0, 0, 0, berlin)
	f.saver.fail = true
	if _, err := f.resets.CheckDue(ctx, now); err == nil {
		t.Fatalf("expected failure while storage is down")
	}
	f.saver.fail = false

	if got := f.record(t, domain.PeriodWeekly, "m1").TotalPoints; got != 8 {
		t.Fatalf("failed reset must not zero the ledger, got %d", got)
	}
	fired, err := f.resets.CheckDue(ctx, now.Add(time.Minute))
	if err != nil || len(fired) != 1 {
		t.Fatalf("expected retry to fire: fired=%d err=%v", len(fired), err)
	}
}

func TestArchiveBoardsNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.resets.CheckDue(ctx, time.Date(2025, 3, 5, 9, 0, 0, 0, berlin)); err != nil {
		t.Fatalf("baseline: %v", err)
	}
	for _, day := range []int{10, 17, 24} {
		if _, err := f.resets.CheckDue(ctx, time.Date(2025, 3, day, 19, 0, 0, 0, berlin)); err != nil {
			t.Fatalf("reset %d: %v", day, err)
		}
	}

	boards, err := f.resets.ArchiveBoards(ctx, domain.PeriodWeekly, 2)
	if err != nil {
		t.Fatalf("archive boards: %v", err)
	}
	if len(boards) != 2 {
		t.Fatalf("expected limit 2, got %d", len(boards))
	}
	if boards[0].Title != "📅 FINAL STANDINGS - Week ending 24.03.2025" {
		t.Fatalf("expected newest first, got %q", boards[0].Title)
	}
}
