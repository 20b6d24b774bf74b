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

func (h *Handler) handleMe(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	actor, ok := middleware.GetActor(ctx)
	if !ok {
		return
	}

	totals, err := h.ledger.MemberTotals(ctx, actor.ID)
	if err != nil {
		h.reply(ctx, b, chatID, h.reportError(err, "member totals"))
		return
	}

	text := fmt.Sprintf("📊 *Your Points*\n\n📅 This week: *%d pts*\n🗓️ This month: *%d pts*", totals.Weekly, totals.Monthly)
	h.reply(ctx, b, chatID, text)
}

func (h *Handler) handleLeaderboard(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	period, err := parsePeriodArg(commandArgs(update.Message.Text))
	if err != nil {
		h.reply(ctx, b, chatID, h.reportError(err, "parse period"))
		return
	}

	board, err := h.resets.LiveBoard(ctx, period)
	if err != nil {
		h.reply(ctx, b, chatID, h.reportError(err, "live board"))
		return
	}
	h.reply(ctx, b, chatID, tg.RenderLeaderboardText(board))
}

// handleHistory shows the final standings of the most recent resets.
func (h *Handler) handleHistory(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	period, err := parsePeriodArg(commandArgs(update.Message.Text))
	if err != nil {
		h.reply(ctx, b, chatID, h.reportError(err, "parse period"))
		return
	}

	boards, err := h.resets.ArchiveBoards(ctx, period, config.ArchiveHistoryLimit)
	if err != nil {
		h.reply(ctx, b, chatID, h.reportError(err, "archive boards"))
		return
	}
	if len(boards) == 0 {
		h.reply(ctx, b, chatID, fmt.Sprintf("📭 No %s resets yet.", period))
		return
	}

	parts := make([]string, len(boards))
	for i, board := range boards {
		parts[i] = tg.RenderLeaderboardText(board)
	}
	if err := tg.SendLongMessage(ctx, b, chatID, strings.Join(parts, "\n\n"), nil); err != nil {
		h.reportError(err, "send history")
	}
}

// handlePublish re-posts every board, e.g. after the bot was restarted.
func (h *Handler) handlePublish(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	actor, ok := middleware.GetActor(ctx)
	if !ok || !actor.Privileged {
		h.reply(ctx, b, chatID, h.reportError(domain.ErrPermission, "publish"))
		return
	}

	if err := h.community.PublishAll(ctx); err != nil {
		h.reply(ctx, b, chatID, "⚠️ Some boards could not be published. Check the logs.")
		h.reportError(err, "publish all")
		return
	}
	h.reply(ctx, b, chatID, "✅ All boards published.")
}
