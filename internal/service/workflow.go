package service

import (
	"context"
	"strings"
	"time"

	"github.com/set-night/orderboard/internal/domain"
	"github.com/set-night/orderboard/internal/repository"
)

// ClaimRequest asks for amount completions of a task to be reviewed.
// RequestID must be unique per member; it becomes part of the submission id.
type ClaimRequest struct {
	MemberID   string
	MemberName string
	TaskKey    string
	Amount     int
	RequestID  string
}

// WorkflowService moves submissions from pending to approved or rejected
// and is the only writer of ledger counters and totals.
type WorkflowService struct {
	store repository.Store
	now   func() time.Time
}

func NewWorkflowService(store repository.Store) *WorkflowService {
	return &WorkflowService{store: store, now: time.Now}
}

// SubmitClaim reserves the completions in both periods and records a pending
// submission. Points are only added on approval.
func (s *WorkflowService) SubmitClaim(ctx context.Context, req ClaimRequest) (domain.SubmissionView, error) {
	if err := domain.ValidateClaimAmount(req.Amount); err != nil {
		return domain.SubmissionView{}, err
	}
	if strings.TrimSpace(req.MemberID) == "" {
		return domain.SubmissionView{}, &domain.ValidationError{Field: "member_id", Reason: "must not be empty"}
	}
	if strings.TrimSpace(req.RequestID) == "" {
		return domain.SubmissionView{}, &domain.ValidationError{Field: "request_id", Reason: "must not be empty"}
	}

	var view domain.SubmissionView
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		task, err := tx.GetTask(ctx, req.TaskKey)
		if err != nil {
			return err
		}

		// The weekly counter is the only cap gate.
		if _, err := reserveCompletions(ctx, tx, domain.PeriodWeekly, req.MemberID, task.Key, req.Amount, task.MaxCompletions); err != nil {
			return err
		}
		if _, err := reserveCompletions(ctx, tx, domain.PeriodMonthly, req.MemberID, task.Key, req.Amount, 0); err != nil {
			return err
		}

		sub := domain.Submission{
			ID:           domain.SubmissionID(req.MemberID, req.RequestID),
			MemberID:     req.MemberID,
			MemberName:   req.MemberName,
			TaskKey:      task.Key,
			Task:         task.Snapshot(),
			Amount:       req.Amount,
			EarnedPoints: int64(req.Amount) * task.Points,
			Status:       domain.SubmissionPending,
			CreatedAt:    s.now(),
		}
		if err := tx.InsertSubmission(ctx, sub); err != nil {
			return err
		}

		totals, err := memberTotals(ctx, tx, req.MemberID)
		if err != nil {
			return err
		}

		view = domain.SubmissionView{Submission: sub, MemberName: sub.MemberName, Totals: totals}
		return nil
	})
	if err != nil {
		return domain.SubmissionView{}, err
	}
	return view, nil
}

// Resolve applies a reviewer's decision exactly once. Any later call for the
// same submission returns domain.ErrAlreadyResolved without touching the ledger.
func (s *WorkflowService) Resolve(ctx context.Context, submissionID string, decision domain.Decision, reviewerID string) (domain.SubmissionView, error) {
	if _, err := domain.ParseDecision(string(decision)); err != nil {
		return domain.SubmissionView{}, err
	}

	var view domain.SubmissionView
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		sub, err := tx.GetSubmissionForUpdate(ctx, submissionID)
		if err != nil {
			return err
		}
		if !sub.IsPending() {
			return domain.ErrAlreadyResolved
		}

		for _, period := range domain.Periods() {
			switch decision {
			case domain.DecisionApprove:
				// Completions were counted at claim time.
				_, err = commitPoints(ctx, tx, period, sub.MemberID, sub.EarnedPoints)
			case domain.DecisionReject:
				_, err = reverseCompletions(ctx, tx, period, sub.MemberID, sub.TaskKey, sub.Amount)
			}
			if err != nil {
				return err
			}
		}

		reviewedAt := s.now()
		sub.Status = decision.Status()
		sub.ReviewedBy = &reviewerID
		sub.ReviewedAt = &reviewedAt
		if err := tx.UpdateSubmission(ctx, sub); err != nil {
			return err
		}

		totals, err := memberTotals(ctx, tx, sub.MemberID)
		if err != nil {
			return err
		}

		view = domain.SubmissionView{Submission: sub, MemberName: sub.MemberName, Totals: totals}
		return nil
	})
	if err != nil {
		return domain.SubmissionView{}, err
	}
	return view, nil
}

// AttachClaimNotice remembers where the claim notice was rendered and
// returns the submission as stored, which may have been reviewed meanwhile.
func (s *WorkflowService) AttachClaimNotice(ctx context.Context, submissionID, ref string) (domain.Submission, error) {
	var sub domain.Submission
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		if sub, err = tx.GetSubmissionForUpdate(ctx, submissionID); err != nil {
			return err
		}
		sub.ClaimMessageID = &ref
		return tx.UpdateSubmission(ctx, sub)
	})
	if err != nil {
		return domain.Submission{}, err
	}
	return sub, nil
}

func (s *WorkflowService) Get(ctx context.Context, submissionID string) (domain.Submission, error) {
	var sub domain.Submission
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		sub, err = tx.GetSubmission(ctx, submissionID)
		return err
	})
	return sub, err
}

// View loads a submission with the member's current totals.
func (s *WorkflowService) View(ctx context.Context, submissionID string) (domain.SubmissionView, error) {
	var view domain.SubmissionView
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		sub, err := tx.GetSubmission(ctx, submissionID)
		if err != nil {
			return err
		}
		totals, err := memberTotals(ctx, tx, sub.MemberID)
		if err != nil {
			return err
		}
		view = domain.SubmissionView{Submission: sub, MemberName: sub.MemberName, Totals: totals}
		if sub.ReviewedBy != nil {
			names, err := tx.GetMemberNames(ctx, []string{*sub.ReviewedBy})
			if err != nil {
				return err
			}
			view.ReviewerName = DisplayName(names, *sub.ReviewedBy)
		}
		return nil
	})
	return view, err
}

// Pending lists submissions awaiting review, oldest first.
func (s *WorkflowService) Pending(ctx context.Context) ([]domain.Submission, error) {
	var subs []domain.Submission
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		subs, err = tx.ListSubmissionsByStatus(ctx, domain.SubmissionPending)
		return err
	})
	return subs, err
}
