package service

import (
	"context"
	"errors"
	"testing"

	"github.com/set-night/orderboard/internal/domain"
)

var (
	admin  = domain.Actor{ID: "a1", DisplayName: "Boss", Privileged: true}
	member = domain.Actor{ID: "m1", DisplayName: "Alice"}
)

func TestReviewRequiresPrivilege(t *testing.T) {
	f := newFixture(t)
	c := f.community()
	ctx := context.Background()
	task := f.createTask(t, "Collect Wood", 10, 2)

	view, err := c.OnClaimRequested(ctx, member, task.Key, 1, "r1")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}

	if _, err := c.OnReviewDecision(ctx, member, view.Submission.ID, domain.DecisionApprove); !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("expected ErrPermission, got %v", err)
	}
	sub, err := f.workflow.Get(ctx, view.Submission.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !sub.IsPending() {
		t.Fatalf("unprivileged review changed status to %s", sub.Status)
	}

	resolved, err := c.OnReviewDecision(ctx, admin, view.Submission.ID, domain.DecisionApprove)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if resolved.ReviewerName != "Boss" {
		t.Fatalf("expected reviewer name, got %q", resolved.ReviewerName)
	}
}

func TestCatalogEditsRequirePrivilege(t *testing.T) {
	f := newFixture(t)
	c := f.community()
	ctx := context.Background()

	if _, err := c.OnTaskCreateRequested(ctx, member, "Hunt", 5, 0); !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("expected ErrPermission on create, got %v", err)
	}
	if _, err := c.OnTaskCreateRequested(ctx, admin, "Hunt", 5, 0); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := c.OnTaskDeleteRequested(ctx, member, "hunt"); !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("expected ErrPermission on delete, got %v", err)
	}
	if f.notifier.catalogs != 1 || f.notifier.openTasks != 1 {
		t.Fatalf("expected one catalog render, got %d/%d", f.notifier.catalogs, f.notifier.openTasks)
	}

	if _, err := c.OnTaskDeleteRequested(ctx, admin, "hunt"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.OnTaskDeleteRequested(ctx, admin, "hunt"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if f.notifier.catalogs != 2 {
		t.Fatalf("failed delete must not re-render, got %d renders", f.notifier.catalogs)
	}
}

func TestNotifierFailureDoesNotRollBack(t *testing.T) {
	f := newFixture(t)
	c := f.community()
	ctx := context.Background()
	task := f.createTask(t, "Collect Wood", 10, 2)
	f.notifier.fail = true

	view, err := c.OnClaimRequested(ctx, member, task.Key, 2, "r1")
	if err != nil {
		t.Fatalf("claim must succeed when rendering fails: %v", err)
	}
	if _, err := c.OnReviewDecision(ctx, admin, view.Submission.ID, domain.DecisionApprove); err != nil {
		t.Fatalf("approve must succeed when rendering fails: %v", err)
	}
	if got := f.record(t, domain.PeriodWeekly, "m1").TotalPoints; got != 20 {
		t.Fatalf("expected 20 points, got %d", got)
	}
}

func TestClaimNoticeHandleStored(t *testing.T) {
	f := newFixture(t)
	c := f.community()
	ctx := context.Background()
	task := f.createTask(t, "Collect Wood", 10, 2)
	f.notifier.ref = "100:200"

	view, err := c.OnClaimRequested(ctx, member, task.Key, 1, "r1")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if view.Submission.ClaimMessageID == nil || *view.Submission.ClaimMessageID != "100:200" {
		t.Fatalf("handle not returned")
	}

	resolved, err := c.OnReviewDecision(ctx, admin, view.Submission.ID, domain.DecisionReject)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if resolved.Submission.ClaimMessageID == nil || *resolved.Submission.ClaimMessageID != "100:200" {
		t.Fatalf("handle lost on resolve")
	}

	last := f.notifier.submissions[len(f.notifier.submissions)-1]
	if last.Submission.Status != domain.SubmissionRejected || *last.Submission.ClaimMessageID != "100:200" {
		t.Fatalf("resolved card rendered without handle: %+v", last.Submission)
	}
}

func TestApproveRepublishesLeaderboards(t *testing.T) {
	f := newFixture(t)
	c := f.community()
	ctx := context.Background()
	task := f.createTask(t, "Collect Wood", 10, 2)

	view, err := c.OnClaimRequested(ctx, member, task.Key, 2, "r1")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if len(f.notifier.boards) != 0 {
		t.Fatalf("claims must not touch leaderboards")
	}
	if _, err := c.OnReviewDecision(ctx, admin, view.Submission.ID, domain.DecisionApprove); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if len(f.notifier.boards) != 2 {
		t.Fatalf("expected weekly and monthly renders, got %d", len(f.notifier.boards))
	}
	if e := f.notifier.boards[0].Entries; len(e) != 1 || e[0].DisplayName != "Alice" || e[0].Points != 20 {
		t.Fatalf("unexpected weekly board %+v", e)
	}
}

func TestPublishAll(t *testing.T) {
	f := newFixture(t)
	c := f.community()
	ctx := context.Background()
	task := f.createTask(t, "Collect Wood", 10, 0)

	for _, r := range []string{"r1", "r2"} {
		if _, err := f.claim("m1", task.Key, 1, r); err != nil {
			t.Fatalf("claim: %v", err)
		}
	}

	if err := c.PublishAll(ctx); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if f.notifier.catalogs != 1 || len(f.notifier.boards) != 2 || len(f.notifier.submissions) != 2 {
		t.Fatalf("unexpected renders: catalogs=%d boards=%d submissions=%d",
			f.notifier.catalogs, len(f.notifier.boards), len(f.notifier.submissions))
	}
}

func TestReviewBeforeNoticeStoredPostsOneCard(t *testing.T) {
	f := newFixture(t)
	c := f.community()
	ctx := context.Background()
	task := f.createTask(t, "Collect Wood", 10, 2)
	f.notifier.ref = "100:200"
	if err := f.members.Touch(ctx, admin); err != nil {
		t.Fatalf("touch: %v", err)
	}

	// The claim committed but its card is not stored yet.
	pending, err := f.claim("m1", task.Key, 1, "r1")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := c.OnReviewDecision(ctx, admin, pending.Submission.ID, domain.DecisionApprove); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if n := len(f.notifier.submissions); n != 0 {
		t.Fatalf("review without a stored card must not post one, got %d renders", n)
	}

	c.renderSubmission(ctx, &pending)

	if n := len(f.notifier.submissions); n != 2 {
		t.Fatalf("expected the posted card to be edited once, got %d renders", n)
	}
	last := f.notifier.submissions[1]
	if last.Submission.Status != domain.SubmissionApproved || last.Submission.ClaimMessageID == nil || *last.Submission.ClaimMessageID != "100:200" {
		t.Fatalf("decision not rendered onto the posted card: %+v", last.Submission)
	}
	if last.ReviewerName != "Boss" {
		t.Fatalf("expected reviewer name, got %q", last.ReviewerName)
	}
}

func TestReviewRenderPicksUpLateNoticeHandle(t *testing.T) {
	f := newFixture(t)
	c := f.community()
	ctx := context.Background()
	task := f.createTask(t, "Collect Wood", 10, 2)
	f.notifier.ref = "100:200"

	pending, err := f.claim("m1", task.Key, 1, "r1")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	resolved, err := f.workflow.Resolve(ctx, pending.Submission.ID, domain.DecisionReject, admin.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := f.workflow.AttachClaimNotice(ctx, pending.Submission.ID, "100:200"); err != nil {
		t.Fatalf("attach: %v", err)
	}

	c.renderSubmission(ctx, &resolved)

	if n := len(f.notifier.submissions); n != 1 {
		t.Fatalf("expected one render, got %d", n)
	}
	if ref := f.notifier.submissions[0].Submission.ClaimMessageID; ref == nil || *ref != "100:200" {
		t.Fatalf("render did not reuse the stored card handle")
	}
}
