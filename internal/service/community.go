package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/set-night/orderboard/internal/domain"
)

// Community translates inbound chat events into core operations and renders
// the affected views once the operation committed. Render failures are
// logged and never reported to the caller.
type Community struct {
	catalog  *CatalogService
	workflow *WorkflowService
	members  *MemberService
	resets   *ResetService
	notifier Notifier
	events   EventLog
	timeout  time.Duration
}

type CommunityDeps struct {
	Catalog       *CatalogService
	Workflow      *WorkflowService
	Members       *MemberService
	Resets        *ResetService
	Notifier      Notifier
	Events        EventLog
	NotifyTimeout time.Duration
}

func NewCommunity(d CommunityDeps) *Community {
	c := &Community{
		catalog:  d.Catalog,
		workflow: d.Workflow,
		members:  d.Members,
		resets:   d.Resets,
		notifier: d.Notifier,
		events:   d.Events,
		timeout:  d.NotifyTimeout,
	}
	if c.notifier == nil {
		c.notifier = NopNotifier{}
	}
	if c.events == nil {
		c.events = NopEventLog{}
	}
	if c.timeout <= 0 {
		c.timeout = 10 * time.Second
	}
	return c
}

// OnClaimRequested submits a claim and posts its notice for review.
func (c *Community) OnClaimRequested(ctx context.Context, actor domain.Actor, taskKey string, amount int, requestID string) (domain.SubmissionView, error) {
	if err := c.members.Touch(ctx, actor); err != nil {
		slog.Warn("touch member", "error", err, "member_id", actor.ID)
	}

	view, err := c.workflow.SubmitClaim(ctx, ClaimRequest{
		MemberID:   actor.ID,
		MemberName: actor.DisplayName,
		TaskKey:    taskKey,
		Amount:     amount,
		RequestID:  requestID,
	})
	if err != nil {
		return domain.SubmissionView{}, err
	}

	slog.Info("claim submitted", "submission_id", view.Submission.ID, "task", view.Submission.TaskKey, "amount", view.Submission.Amount)
	c.events.LogClaim(view)
	c.renderSubmission(ctx, &view)
	return view, nil
}

// OnReviewDecision resolves a submission. Only privileged actors may review.
func (c *Community) OnReviewDecision(ctx context.Context, actor domain.Actor, submissionID string, decision domain.Decision) (domain.SubmissionView, error) {
	if !actor.Privileged {
		return domain.SubmissionView{}, domain.ErrPermission
	}

	view, err := c.workflow.Resolve(ctx, submissionID, decision, actor.ID)
	if err != nil {
		return domain.SubmissionView{}, err
	}
	view.ReviewerName = actor.DisplayName

	slog.Info("submission reviewed", "submission_id", submissionID, "status", view.Submission.Status, "reviewer_id", actor.ID)
	c.events.LogReview(view)
	c.renderSubmission(ctx, &view)
	if view.Submission.Status == domain.SubmissionApproved {
		c.PublishLeaderboards(ctx)
	}
	return view, nil
}

// OnTaskCreateRequested adds a task to the catalog.
func (c *Community) OnTaskCreateRequested(ctx context.Context, actor domain.Actor, name string, points int64, maxCompletions int) (domain.Task, error) {
	if !actor.Privileged {
		return domain.Task{}, domain.ErrPermission
	}

	task, err := c.catalog.CreateTask(ctx, name, points, maxCompletions, actor.ID)
	if err != nil {
		return domain.Task{}, err
	}

	slog.Info("task created", "task", task.Key, "points", task.Points, "max_completions", task.MaxCompletions)
	c.events.LogCatalog("created", task, actor)
	c.PublishCatalog(ctx)
	return task, nil
}

// OnTaskDeleteRequested removes a task. Deleting an absent task returns
// domain.ErrTaskNotFound and renders nothing.
func (c *Community) OnTaskDeleteRequested(ctx context.Context, actor domain.Actor, key string) (domain.Task, error) {
	if !actor.Privileged {
		return domain.Task{}, domain.ErrPermission
	}

	task, err := c.catalog.DeleteTask(ctx, key)
	if err != nil {
		return domain.Task{}, err
	}

	slog.Info("task deleted", "task", task.Key)
	c.events.LogCatalog("deleted", task, actor)
	c.PublishCatalog(ctx)
	return task, nil
}

// PublishAll renders every view from stored state. It runs at startup so
// boards and pending reviews survive restarts.
func (c *Community) PublishAll(ctx context.Context) error {
	c.PublishCatalog(ctx)
	c.PublishLeaderboards(ctx)

	pending, err := c.workflow.Pending(ctx)
	if err != nil {
		return err
	}
	for _, sub := range pending {
		view, err := c.workflow.View(ctx, sub.ID)
		if err != nil {
			slog.Warn("load pending submission", "error", err, "submission_id", sub.ID)
			continue
		}
		c.renderSubmission(ctx, &view)
	}
	return nil
}

// PublishCatalog re-renders the catalog and open task boards.
func (c *Community) PublishCatalog(ctx context.Context) {
	tasks, err := c.catalog.ListTasks(ctx)
	if err != nil {
		slog.Warn("list tasks for render", "error", err)
		return
	}

	nctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.notifier.RenderCatalog(nctx, tasks); err != nil {
		slog.Warn("render catalog", "error", err)
	}
	if err := c.notifier.RenderOpenTasks(nctx, tasks); err != nil {
		slog.Warn("render open tasks", "error", err)
	}
}

// PublishLeaderboards re-renders the live board of every period.
func (c *Community) PublishLeaderboards(ctx context.Context) {
	nctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	for _, period := range domain.Periods() {
		if err := c.resets.RenderLive(nctx, period); err != nil {
			slog.Warn("render leaderboard", "error", err, "period", period)
		}
	}
}

// renderSubmission posts or edits the submission card and stores the
// notice handle when it is new.
func (c *Community) renderSubmission(ctx context.Context, view *domain.SubmissionView) {
	if !view.Submission.IsPending() && view.Submission.ClaimMessageID == nil {
		// The claim side may not have stored its handle yet. Without one a
		// render would post a second card, so leave the final edit to it.
		stored, err := c.workflow.Get(ctx, view.Submission.ID)
		if err != nil {
			slog.Warn("reload submission", "error", err, "submission_id", view.Submission.ID)
			return
		}
		if stored.ClaimMessageID == nil {
			slog.Debug("submission card not posted yet", "submission_id", view.Submission.ID)
			return
		}
		view.Submission.ClaimMessageID = stored.ClaimMessageID
	}

	nctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// A partial failure may still return a handle worth keeping.
	ref, err := c.notifier.RenderSubmission(nctx, *view)
	if err != nil {
		slog.Warn("render submission", "error", err, "submission_id", view.Submission.ID)
	}
	if ref == "" {
		return
	}
	if cur := view.Submission.ClaimMessageID; cur != nil && *cur == ref {
		return
	}

	stored, err := c.workflow.AttachClaimNotice(ctx, view.Submission.ID, ref)
	if err != nil {
		slog.Warn("attach claim notice", "error", err, "submission_id", view.Submission.ID)
		if !errors.Is(err, context.Canceled) {
			c.events.LogError(err, "attach claim notice "+view.Submission.ID)
		}
		return
	}
	view.Submission.ClaimMessageID = &ref

	// Reviewed while the pending card was being posted: show the decision.
	if view.Submission.IsPending() && !stored.IsPending() {
		fresh, err := c.workflow.View(ctx, view.Submission.ID)
		if err != nil {
			slog.Warn("load reviewed submission", "error", err, "submission_id", view.Submission.ID)
			return
		}
		c.renderSubmission(ctx, &fresh)
	}
}
