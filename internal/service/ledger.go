package service

import (
	"context"

	"github.com/set-night/orderboard/internal/domain"
	"github.com/set-night/orderboard/internal/repository"
)

type LedgerService struct {
	store repository.Store
}

func NewLedgerService(store repository.Store) *LedgerService {
	return &LedgerService{store: store}
}

// ReserveCompletions counts amount completions of taskKey against maxCompletions
// (0 = unlimited) and returns the new counter.
func (s *LedgerService) ReserveCompletions(ctx context.Context, period domain.Period, memberID, taskKey string, amount, maxCompletions int) (int, error) {
	var n int
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		n, err = reserveCompletions(ctx, tx, period, memberID, taskKey, amount, maxCompletions)
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// CommitPoints adds points (negative to take them back) and returns the new total.
func (s *LedgerService) CommitPoints(ctx context.Context, period domain.Period, memberID string, points int64) (int64, error) {
	var total int64
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		total, err = commitPoints(ctx, tx, period, memberID, points)
		return err
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ReverseCompletions takes back amount completions, never going below zero.
func (s *LedgerService) ReverseCompletions(ctx context.Context, period domain.Period, memberID, taskKey string, amount int) (int, error) {
	var n int
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		n, err = reverseCompletions(ctx, tx, period, memberID, taskKey, amount)
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *LedgerService) GetTotals(ctx context.Context, period domain.Period, memberID string) (domain.MemberPeriodRecord, error) {
	var rec domain.MemberPeriodRecord
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		rec, err = tx.GetMemberRecord(ctx, period, memberID)
		return err
	})
	return rec, err
}

// MemberTotals returns the member's point total for every period.
func (s *LedgerService) MemberTotals(ctx context.Context, memberID string) (domain.Totals, error) {
	var totals domain.Totals
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		totals, err = memberTotals(ctx, tx, memberID)
		return err
	})
	return totals, err
}

// SnapshotAndZero returns the period as it was and leaves it empty.
func (s *LedgerService) SnapshotAndZero(ctx context.Context, period domain.Period) (domain.PeriodLedger, error) {
	var snapshot domain.PeriodLedger
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		snapshot, err = snapshotAndZero(ctx, tx, period)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// lockMember serializes work on one member's record in one period and keeps
// resets of that period out until the transaction ends.
func lockMember(ctx context.Context, tx repository.Tx, period domain.Period, memberID string) error {
	if err := tx.LockPeriod(ctx, period, false); err != nil {
		return err
	}
	return tx.LockMember(ctx, period, memberID)
}

func reserveCompletions(ctx context.Context, tx repository.Tx, period domain.Period, memberID, taskKey string, amount, maxCompletions int) (int, error) {
	if err := domain.ValidateClaimAmount(amount); err != nil {
		return 0, err
	}
	if err := lockMember(ctx, tx, period, memberID); err != nil {
		return 0, err
	}

	rec, err := tx.GetMemberRecord(ctx, period, memberID)
	if err != nil {
		return 0, err
	}

	counted := rec.CompletionsFor(taskKey)
	if maxCompletions != 0 && amount > maxCompletions-counted {
		return counted, &domain.CapExceededError{
			TaskKey:   taskKey,
			Cap:       maxCompletions,
			Remaining: max(maxCompletions-counted, 0),
		}
	}

	n := counted + amount
	if err := tx.SetCompletions(ctx, period, memberID, taskKey, n); err != nil {
		return 0, err
	}
	return n, nil
}

func commitPoints(ctx context.Context, tx repository.Tx, period domain.Period, memberID string, points int64) (int64, error) {
	if err := lockMember(ctx, tx, period, memberID); err != nil {
		return 0, err
	}
	return tx.AddPoints(ctx, period, memberID, points)
}

func reverseCompletions(ctx context.Context, tx repository.Tx, period domain.Period, memberID, taskKey string, amount int) (int, error) {
	if err := lockMember(ctx, tx, period, memberID); err != nil {
		return 0, err
	}

	rec, err := tx.GetMemberRecord(ctx, period, memberID)
	if err != nil {
		return 0, err
	}

	n := max(rec.CompletionsFor(taskKey)-amount, 0)
	if err := tx.SetCompletions(ctx, period, memberID, taskKey, n); err != nil {
		return 0, err
	}
	return n, nil
}

func snapshotAndZero(ctx context.Context, tx repository.Tx, period domain.Period) (domain.PeriodLedger, error) {
	if err := tx.LockPeriod(ctx, period, true); err != nil {
		return nil, err
	}

	snapshot, err := tx.GetPeriodLedger(ctx, period)
	if err != nil {
		return nil, err
	}
	if err := tx.ZeroPeriod(ctx, period); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func memberTotals(ctx context.Context, tx repository.Tx, memberID string) (domain.Totals, error) {
	weekly, err := tx.GetMemberRecord(ctx, domain.PeriodWeekly, memberID)
	if err != nil {
		return domain.Totals{}, err
	}
	monthly, err := tx.GetMemberRecord(ctx, domain.PeriodMonthly, memberID)
	if err != nil {
		return domain.Totals{}, err
	}
	return domain.Totals{Weekly: weekly.TotalPoints, Monthly: monthly.TotalPoints}, nil
}

// standings returns the period ledger together with member display names.
func standings(ctx context.Context, tx repository.Tx, period domain.Period) (domain.PeriodLedger, map[string]string, error) {
	ledger, err := tx.GetPeriodLedger(ctx, period)
	if err != nil {
		return nil, nil, err
	}
	names, err := tx.GetMemberNames(ctx, memberIDs(ledger))
	if err != nil {
		return nil, nil, err
	}
	return ledger, names, nil
}

func memberIDs(ledger domain.PeriodLedger) []string {
	ids := make([]string, 0, len(ledger))
	for id := range ledger {
		ids = append(ids, id)
	}
	return ids
}
