package domain

import (
	"fmt"
	"time"
)

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Decision is a reviewer's verdict on a pending submission.
type Decision string

const (
	DecisionApprove Decision = "approved"
	DecisionReject  Decision = "rejected"
)

func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case DecisionApprove, DecisionReject:
		return Decision(s), nil
	}
	return "", &ValidationError{Field: "decision", Reason: fmt.Sprintf("unknown decision %q", s)}
}

func (d Decision) Status() SubmissionStatus {
	return SubmissionStatus(d)
}

type Submission struct {
	ID             string
	MemberID       string
	MemberName     string
	TaskKey        string
	Task           TaskSnapshot
	Amount         int
	EarnedPoints   int64
	Status         SubmissionStatus
	ReviewedBy     *string
	ReviewedAt     *time.Time
	ClaimMessageID *string
	CreatedAt      time.Time
}

func (s *Submission) IsPending() bool {
	return s.Status == SubmissionPending
}

// SubmissionID derives the id from the member and the caller's request id.
func SubmissionID(memberID, requestID string) string {
	return memberID + "_" + requestID
}

// SubmissionView is what the notification boundary needs to render a card.
type SubmissionView struct {
	Submission   Submission
	MemberName   string
	ReviewerName string
	Totals       Totals
}
