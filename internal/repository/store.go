package repository

import (
	"context"
	"time"

	"github.com/set-night/orderboard/internal/domain"
)

// Store runs fn inside one atomic unit of work. If fn or the commit fails,
// nothing fn wrote is visible afterwards.
type Store interface {
	WithTx(ctx context.Context, fn func(Tx) error) error
}

// Tx is the set of reads and writes available inside a unit of work.
type Tx interface {
	// Catalog
	ListTasks(ctx context.Context) ([]domain.Task, error)
	GetTask(ctx context.Context, key string) (domain.Task, error)
	InsertTask(ctx context.Context, task domain.Task) error
	DeleteTask(ctx context.Context, key string) error

	// Ledger. LockPeriod must be taken before LockMember; resets take the
	// period lock exclusively, member operations take it shared.
	LockPeriod(ctx context.Context, period domain.Period, exclusive bool) error
	LockMember(ctx context.Context, period domain.Period, memberID string) error
	GetMemberRecord(ctx context.Context, period domain.Period, memberID string) (domain.MemberPeriodRecord, error)
	SetCompletions(ctx context.Context, period domain.Period, memberID, taskKey string, n int) error
	AddPoints(ctx context.Context, period domain.Period, memberID string, delta int64) (int64, error)
	GetPeriodLedger(ctx context.Context, period domain.Period) (domain.PeriodLedger, error)
	ZeroPeriod(ctx context.Context, period domain.Period) error

	// Submissions. GetSubmissionForUpdate holds the row until the end of the tx.
	InsertSubmission(ctx context.Context, sub domain.Submission) error
	GetSubmission(ctx context.Context, id string) (domain.Submission, error)
	GetSubmissionForUpdate(ctx context.Context, id string) (domain.Submission, error)
	UpdateSubmission(ctx context.Context, sub domain.Submission) error
	ListSubmissionsByStatus(ctx context.Context, status domain.SubmissionStatus) ([]domain.Submission, error)

	// Member directory
	UpsertMember(ctx context.Context, member domain.Member) error
	GetMember(ctx context.Context, id string) (domain.Member, error)
	GetMemberNames(ctx context.Context, ids []string) (map[string]string, error)

	// Resets. GetLastResetForUpdate returns the zero time if the period never reset.
	GetLastResetForUpdate(ctx context.Context, period domain.Period) (time.Time, error)
	SetLastReset(ctx context.Context, period domain.Period, at time.Time) error
	InsertArchive(ctx context.Context, archive domain.LeaderboardArchive) error
	ListArchives(ctx context.Context, period domain.Period, limit int) ([]domain.LeaderboardArchive, error)
}
