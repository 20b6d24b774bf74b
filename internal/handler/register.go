package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	tg "github.com/set-night/orderboard/internal/telegram"
)

// Register registers all command and callback handlers on the bot instance.
func (h *Handler) Register() {
	// Member commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypePrefix, h.handleHelp)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/tasks", bot.MatchTypePrefix, h.handleTasks)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/claim", bot.MatchTypePrefix, h.handleClaim)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/me", bot.MatchTypePrefix, h.handleMe)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/leaderboard", bot.MatchTypePrefix, h.handleLeaderboard)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/history", bot.MatchTypePrefix, h.handleHistory)

	// Admin commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/taskcreate", bot.MatchTypePrefix, h.handleTaskCreate)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/taskdelete", bot.MatchTypePrefix, h.handleTaskDelete)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/pending", bot.MatchTypePrefix, h.handlePending)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/publish", bot.MatchTypePrefix, h.handlePublish)

	// Claim callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, tg.CallbackClaim, bot.MatchTypePrefix, h.handleClaimTask)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, tg.CallbackAmount, bot.MatchTypePrefix, h.handleClaimAmount)

	// Review callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, tg.CallbackApprove, bot.MatchTypePrefix, h.handleApprove)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, tg.CallbackReject, bot.MatchTypePrefix, h.handleReject)

	// Catalog callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, tg.CallbackDelete, bot.MatchTypePrefix, h.handleDeleteTask)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, tg.CallbackDeletePage+"_", bot.MatchTypePrefix, h.handleDeletePage)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, tg.CallbackNoop, bot.MatchTypeExact, h.handleNoop)
}

// handleNoop is a no-op callback handler used for pagination indicators and other
// non-interactive inline buttons. It simply acknowledges the callback query.
func (h *Handler) handleNoop(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})
	}
}
