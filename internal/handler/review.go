package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/orderboard/internal/domain"
	"github.com/set-night/orderboard/internal/middleware"
	tg "github.com/set-night/orderboard/internal/telegram"
)

func (h *Handler) handleApprove(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.review(ctx, b, update, strings.TrimPrefix(update.CallbackQuery.Data, tg.CallbackApprove), domain.DecisionApprove)
}

func (h *Handler) handleReject(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.review(ctx, b, update, strings.TrimPrefix(update.CallbackQuery.Data, tg.CallbackReject), domain.DecisionReject)
}

// review resolves the submission. The cards themselves are re-rendered by
// the notifier.
func (h *Handler) review(ctx context.Context, b *bot.Bot, update *models.Update, submissionID string, decision domain.Decision) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		h.answer(ctx, b, update, "", false)
		return
	}

	view, err := h.community.OnReviewDecision(ctx, actor, submissionID, decision)
	if err != nil {
		h.answer(ctx, b, update, h.reportError(err, "review submission"), true)
		return
	}

	if view.Submission.Status == domain.SubmissionApproved {
		h.answer(ctx, b, update, fmt.Sprintf("✅ Approved: +%d pts", view.Submission.EarnedPoints), false)
	} else {
		h.answer(ctx, b, update, "❌ Not approved", false)
	}

	// Review buttons may live outside the approval chat, e.g. in /pending replies.
	if chatID, messageID, ok := callbackChat(update); ok && chatID != h.cfg.ApprovalChatID {
		tg.EditCard(ctx, b, chatID, messageID, tg.RenderSubmissionText(view), nil)
	}
}

// handlePending lists submissions awaiting review, each with its buttons.
func (h *Handler) handlePending(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	actor, ok := middleware.GetActor(ctx)
	if !ok || !actor.Privileged {
		h.reply(ctx, b, chatID, h.reportError(domain.ErrPermission, "pending"))
		return
	}

	pending, err := h.workflow.Pending(ctx)
	if err != nil {
		h.reply(ctx, b, chatID, h.reportError(err, "list pending"))
		return
	}
	if len(pending) == 0 {
		h.reply(ctx, b, chatID, "✅ Nothing to review.")
		return
	}

	h.reply(ctx, b, chatID, fmt.Sprintf("🕐 *%d submission(s) waiting for review*", len(pending)))
	for _, sub := range pending {
		view, err := h.workflow.View(ctx, sub.ID)
		if err != nil {
			h.reply(ctx, b, chatID, h.reportError(err, "load submission"))
			continue
		}
		if _, err := tg.SendCard(ctx, b, chatID, tg.RenderSubmissionText(view), tg.ReviewKeyboard(sub.ID)); err != nil {
			h.reportError(err, "send pending card")
		}
	}
}
