package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/orderboard/internal/domain"
)

const genericFailure = "❌ Something went wrong. Please try again later."

// userMessage turns a core error into a reply. ok is false for unexpected
// errors, which callers log.
func userMessage(err error) (msg string, ok bool) {
	var (
		ve     *domain.ValidationError
		capErr *domain.CapExceededError
	)
	switch {
	case errors.As(err, &ve):
		return fmt.Sprintf("❌ Invalid %s: %s.", ve.Field, ve.Reason), true
	case errors.As(err, &capErr):
		if capErr.Remaining == 0 {
			return fmt.Sprintf("🚫 You already reached the weekly limit of %dx for this order.", capErr.Cap), true
		}
		return fmt.Sprintf("🚫 Only %d more completion(s) allowed this week (limit %dx).", capErr.Remaining, capErr.Cap), true
	case errors.Is(err, domain.ErrTaskNotFound):
		return "❌ This order does not exist anymore.", true
	case errors.Is(err, domain.ErrSubmissionNotFound):
		return "❌ Submission not found.", true
	case errors.Is(err, domain.ErrSubmissionExists):
		return "⚠️ This claim was already submitted.", true
	case errors.Is(err, domain.ErrAlreadyResolved):
		return "⚠️ This submission has already been reviewed.", true
	case errors.Is(err, domain.ErrPermission):
		return "🚫 Only admins can do that.", true
	}
	return genericFailure, false
}

func (h *Handler) reportError(err error, op string) string {
	msg, ok := userMessage(err)
	if !ok {
		slog.Error(op, "error", err)
		if h.tgLogger != nil {
			h.tgLogger.LogError(err, op)
		}
	}
	return msg
}

func (h *Handler) reply(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdownV1,
	})
	if err != nil {
		_, err = b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	}
	if err != nil {
		slog.Warn("send reply", "error", err, "chat_id", chatID)
	}
}

func (h *Handler) answer(ctx context.Context, b *bot.Bot, update *models.Update, text string, alert bool) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
		Text:            text,
		ShowAlert:       alert,
	})
}

// callbackChat returns the chat and message the callback button belongs to.
func callbackChat(update *models.Update) (chatID int64, messageID int, ok bool) {
	msg := update.CallbackQuery.Message.Message
	if msg == nil {
		return 0, 0, false
	}
	return msg.Chat.ID, msg.ID, true
}

func requestID(update *models.Update) string {
	return strconv.FormatInt(update.ID, 10)
}
