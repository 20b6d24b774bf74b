package service

import (
	"context"

	"github.com/set-night/orderboard/internal/domain"
)

// Notifier renders catalog, submission and leaderboard views outside the
// core. It is called after the ledger transaction committed; its failures
// are logged and never undo ledger changes.
type Notifier interface {
	RenderCatalog(ctx context.Context, tasks []domain.Task) error
	RenderOpenTasks(ctx context.Context, tasks []domain.Task) error
	// RenderSubmission returns an opaque handle for the claim notice, or ""
	// when nothing was posted. The same handle comes back on later renders
	// via Submission.ClaimMessageID.
	RenderSubmission(ctx context.Context, view domain.SubmissionView) (string, error)
	RenderLeaderboard(ctx context.Context, board domain.Leaderboard) error
}

// ArchiveSink stores archived leaderboards somewhere outside the database.
type ArchiveSink interface {
	Put(ctx context.Context, archive domain.LeaderboardArchive) error
}

type NopNotifier struct{}

func (NopNotifier) RenderCatalog(context.Context, []domain.Task) error   { return nil }
func (NopNotifier) RenderOpenTasks(context.Context, []domain.Task) error { return nil }
func (NopNotifier) RenderSubmission(context.Context, domain.SubmissionView) (string, error) {
	return "", nil
}
func (NopNotifier) RenderLeaderboard(context.Context, domain.Leaderboard) error { return nil }

// EventLog mirrors business events to an operator channel, best effort.
type EventLog interface {
	LogClaim(view domain.SubmissionView)
	LogReview(view domain.SubmissionView)
	LogCatalog(action string, task domain.Task, actor domain.Actor)
	LogReset(archive domain.LeaderboardArchive)
	LogError(err error, context string)
}

type NopEventLog struct{}

func (NopEventLog) LogClaim(domain.SubmissionView)               {}
func (NopEventLog) LogReview(domain.SubmissionView)              {}
func (NopEventLog) LogCatalog(string, domain.Task, domain.Actor) {}
func (NopEventLog) LogReset(domain.LeaderboardArchive)           {}
func (NopEventLog) LogError(error, string)                       {}
