package handler

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/orderboard/internal/middleware"
	tg "github.com/set-night/orderboard/internal/telegram"
)

const memberHelp = "📋 *Commands:*\n" +
	"/tasks - Open orders\n" +
	"/claim - Claim completed orders\n" +
	"/me - Your points\n" +
	"/leaderboard weekly|monthly - Current standings\n" +
	"/history weekly|monthly - Final standings of past periods\n"

const adminHelp = "\n🛠 *Admin:*\n" +
	"/taskcreate Name | points | max - Create an order (max 0 = unlimited)\n" +
	"/taskdelete - Delete an order\n" +
	"/pending - Submissions waiting for review\n" +
	"/publish - Re-post every board\n"

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	name := "there"
	if actor, ok := middleware.GetActor(ctx); ok && actor.DisplayName != "" {
		name = tg.EscapeMarkdown(actor.DisplayName)
	}

	text := fmt.Sprintf("👋 Hi, *%s*!\n\nComplete orders, claim them here and climb the weekly and monthly leaderboards.\n\n%s", name, memberHelp)
	h.reply(ctx, b, update.Message.Chat.ID, text)
}

func (h *Handler) handleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := memberHelp
	if actor, ok := middleware.GetActor(ctx); ok && actor.Privileged {
		text += adminHelp
	}
	h.reply(ctx, b, update.Message.Chat.ID, text)
}
