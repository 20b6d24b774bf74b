package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/set-night/orderboard/internal/domain"
	"github.com/set-night/orderboard/internal/repository"
)

// ResetService archives and zeroes a period once its reset boundary passed.
// The last reset of every period is persisted, so boundaries missed while
// the process was down are caught up on the next check.
type ResetService struct {
	store    repository.Store
	schedule Schedule
	notifier Notifier
	sink     ArchiveSink
	events   EventLog
	now      func() time.Time
}

func NewResetService(store repository.Store, schedule Schedule, notifier Notifier, sink ArchiveSink, events EventLog) *ResetService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if events == nil {
		events = NopEventLog{}
	}
	return &ResetService{
		store:    store,
		schedule: schedule,
		notifier: notifier,
		sink:     sink,
		events:   events,
		now:      time.Now,
	}
}

// Run checks immediately and then on every tick until ctx is done.
func (s *ResetService) Run(ctx context.Context, interval time.Duration) {
	s.check(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *ResetService) check(ctx context.Context) {
	if _, err := s.CheckDue(ctx, s.now()); err != nil {
		slog.Error("check resets", "error", err)
		s.events.LogError(err, "reset check")
	}
}

// CheckDue fires every period whose boundary passed since its last reset and
// returns the archives written. Each period resets in its own transaction.
func (s *ResetService) CheckDue(ctx context.Context, now time.Time) ([]domain.LeaderboardArchive, error) {
	var fired []domain.LeaderboardArchive
	for _, period := range domain.Periods() {
		archive, err := s.resetIfDue(ctx, period, now)
		if err != nil {
			return fired, fmt.Errorf("reset %s: %w", period, err)
		}
		if archive == nil {
			continue
		}

		fired = append(fired, *archive)
		s.publish(ctx, *archive)
	}
	return fired, nil
}

func (s *ResetService) resetIfDue(ctx context.Context, period domain.Period, now time.Time) (*domain.LeaderboardArchive, error) {
	var archive *domain.LeaderboardArchive

	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		last, err := tx.GetLastResetForUpdate(ctx, period)
		if err != nil {
			return err
		}

		// A fresh installation starts counting from now.
		if last.IsZero() {
			slog.Info("reset baseline recorded", "period", period, "at", now)
			return tx.SetLastReset(ctx, period, now)
		}

		boundary := s.schedule.LastBoundary(period, now)
		if !last.Before(boundary) {
			return nil
		}

		snapshot, err := snapshotAndZero(ctx, tx, period)
		if err != nil {
			return err
		}

		a := domain.LeaderboardArchive{
			ID:         uuid.NewString(),
			Period:     period,
			Title:      s.schedule.FinalTitle(period, boundary),
			Snapshot:   snapshot,
			ArchivedAt: now,
		}
		if err := tx.InsertArchive(ctx, a); err != nil {
			return err
		}
		if err := tx.SetLastReset(ctx, period, now); err != nil {
			return err
		}

		archive = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return archive, nil
}

// publish posts the archive, then the zeroed live board. Failures are logged.
func (s *ResetService) publish(ctx context.Context, archive domain.LeaderboardArchive) {
	slog.Info("period reset", "period", archive.Period, "archive_id", archive.ID, "members", len(archive.Snapshot))
	s.events.LogReset(archive)

	names, err := s.names(ctx, archive.Snapshot)
	if err != nil {
		slog.Warn("load member names", "error", err)
	}

	if err := s.notifier.RenderLeaderboard(ctx, s.schedule.ArchiveBoard(archive, names)); err != nil {
		slog.Warn("render archived leaderboard", "error", err, "period", archive.Period)
	}
	if err := s.RenderLive(ctx, archive.Period); err != nil {
		slog.Warn("render live leaderboard", "error", err, "period", archive.Period)
	}

	if s.sink != nil {
		if err := s.sink.Put(ctx, archive); err != nil {
			slog.Warn("upload archive", "error", err, "archive_id", archive.ID)
		}
	}
}

// RenderLive re-renders the live board of period from the current ledger.
func (s *ResetService) RenderLive(ctx context.Context, period domain.Period) error {
	board, err := s.LiveBoard(ctx, period)
	if err != nil {
		return err
	}
	return s.notifier.RenderLeaderboard(ctx, board)
}

// LiveBoard builds the current standing of period.
func (s *ResetService) LiveBoard(ctx context.Context, period domain.Period) (domain.Leaderboard, error) {
	var (
		ledger domain.PeriodLedger
		names  map[string]string
	)
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		ledger, names, err = standings(ctx, tx, period)
		return err
	})
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return s.schedule.LiveBoard(period, ledger, names, s.now()), nil
}

// Archives returns the most recent archives of period, newest first.
func (s *ResetService) Archives(ctx context.Context, period domain.Period, limit int) ([]domain.LeaderboardArchive, error) {
	var archives []domain.LeaderboardArchive
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		archives, err = tx.ListArchives(ctx, period, limit)
		return err
	})
	return archives, err
}

// ArchiveBoards renders the most recent archives of period.
func (s *ResetService) ArchiveBoards(ctx context.Context, period domain.Period, limit int) ([]domain.Leaderboard, error) {
	archives, err := s.Archives(ctx, period, limit)
	if err != nil {
		return nil, err
	}

	boards := make([]domain.Leaderboard, 0, len(archives))
	for _, a := range archives {
		names, err := s.names(ctx, a.Snapshot)
		if err != nil {
			return nil, err
		}
		boards = append(boards, s.schedule.ArchiveBoard(a, names))
	}
	return boards, nil
}

func (s *ResetService) names(ctx context.Context, ledger domain.PeriodLedger) (map[string]string, error) {
	var names map[string]string
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		names, err = tx.GetMemberNames(ctx, memberIDs(ledger))
		return err
	})
	return names, err
}
