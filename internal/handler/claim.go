package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/orderboard/internal/config"
	"github.com/set-night/orderboard/internal/domain"
	"github.com/set-night/orderboard/internal/middleware"
	tg "github.com/set-night/orderboard/internal/telegram"
)

// handleClaim shows the task picker, or submits directly with "/claim <order> <amount>".
func (h *Handler) handleClaim(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	actor, ok := middleware.GetActor(ctx)
	if !ok {
		return
	}

	if args := commandArgs(update.Message.Text); args != "" {
		taskKey, amount, err := parseClaimArgs(args)
		if err != nil {
			h.reply(ctx, b, chatID, h.reportError(err, "parse claim"))
			return
		}
		h.submitClaim(ctx, b, chatID, actor, taskKey, amount, requestID(update))
		return
	}

	tasks, err := h.catalog.ListTasks(ctx)
	if err != nil {
		h.reply(ctx, b, chatID, h.reportError(err, "list tasks"))
		return
	}
	if len(tasks) == 0 {
		h.reply(ctx, b, chatID, "📋 There are no open orders right now.")
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "🏆 *Claim Points*\n\nPick the order you completed:",
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: tg.TaskPickerKeyboard(tasks),
	})
}

// handleClaimTask offers the amounts that still fit into the weekly limit.
func (h *Handler) handleClaimTask(ctx context.Context, b *bot.Bot, update *models.Update) {
	taskKey := strings.TrimPrefix(update.CallbackQuery.Data, tg.CallbackClaim)

	actor, ok := middleware.GetActor(ctx)
	if !ok {
		h.answer(ctx, b, update, "", false)
		return
	}

	task, err := h.catalog.GetTask(ctx, taskKey)
	if err != nil {
		h.answer(ctx, b, update, h.reportError(err, "get task"), true)
		return
	}

	rec, err := h.ledger.GetTotals(ctx, domain.PeriodWeekly, actor.ID)
	if err != nil {
		h.answer(ctx, b, update, h.reportError(err, "get totals"), true)
		return
	}

	remaining := remainingAllowance(task, rec.CompletionsFor(task.Key))
	kb := tg.AmountKeyboard(task.Key, config.ClaimAmountOptions, remaining)
	if kb == nil {
		h.answer(ctx, b, update, fmt.Sprintf("🚫 You already reached the weekly limit of %dx for this order.", task.MaxCompletions), true)
		return
	}
	h.answer(ctx, b, update, "", false)

	chatID, messageID, ok := callbackChat(update)
	if !ok {
		return
	}

	text := fmt.Sprintf("📌 *%s*\n\n⭐ %d pts per completion\n🔁 Max per week: %s\n\nHow many times did you complete it?",
		tg.EscapeMarkdown(task.Name), task.Points, tg.MaxDisplay(task.MaxCompletions))
	if remaining > 0 {
		text += fmt.Sprintf("\n_%d left this week._", remaining)
	}
	if err := tg.EditCard(ctx, b, chatID, messageID, text, kb); err != nil {
		tg.SendCard(ctx, b, chatID, text, kb)
	}
}

// handleClaimAmount submits the claim picked through the keyboard.
func (h *Handler) handleClaimAmount(ctx context.Context, b *bot.Bot, update *models.Update) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		h.answer(ctx, b, update, "", false)
		return
	}

	amount, taskKey, err := parseAmountCallback(update.CallbackQuery.Data)
	if err != nil {
		h.answer(ctx, b, update, h.reportError(err, "parse amount"), true)
		return
	}

	view, err := h.community.OnClaimRequested(ctx, actor, taskKey, amount, requestID(update))
	if err != nil {
		h.answer(ctx, b, update, h.reportError(err, "submit claim"), true)
		return
	}
	h.answer(ctx, b, update, "✅ Submitted for review", false)

	if chatID, messageID, ok := callbackChat(update); ok {
		tg.EditCard(ctx, b, chatID, messageID, claimConfirmation(view), nil)
	}
}

func (h *Handler) submitClaim(ctx context.Context, b *bot.Bot, chatID int64, actor domain.Actor, taskKey string, amount int, reqID string) {
	view, err := h.community.OnClaimRequested(ctx, actor, taskKey, amount, reqID)
	if err != nil {
		h.reply(ctx, b, chatID, h.reportError(err, "submit claim"))
		return
	}
	h.reply(ctx, b, chatID, claimConfirmation(view))
}

func claimConfirmation(view domain.SubmissionView) string {
	sub := view.Submission
	return fmt.Sprintf("✅ *Submitted!*\n\n📌 %s × %d = *%d pts*\n🕐 Waiting for review.",
		tg.EscapeMarkdown(sub.Task.Name), sub.Amount, sub.EarnedPoints)
}
