package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const MaxMessageLen = 4096

// SendLongMessage sends a potentially long message, splitting it into parts if needed.
// Falls back to plain text if Markdown parsing fails.
func SendLongMessage(ctx context.Context, b *bot.Bot, chatID int64, text string, replyToID *int) error {
	text = FixMarkdown(text)
	parts := SplitMessage(text, MaxMessageLen)

	for _, part := range parts {
		params := &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      part,
			ParseMode: models.ParseModeMarkdownV1,
		}
		if replyToID != nil {
			params.ReplyParameters = &models.ReplyParameters{
				MessageID: *replyToID,
			}
			replyToID = nil // only reply to first part
		}

		_, err := b.SendMessage(ctx, params)
		if err != nil {
			slog.Warn("markdown send failed, falling back to plain text", "error", err)
			params.ParseMode = ""
			_, err = b.SendMessage(ctx, params)
			if err != nil {
				return fmt.Errorf("send message: %w", err)
			}
		}
	}

	return nil
}

// SendCard sends a single message with an optional keyboard and returns its id.
func SendCard(ctx context.Context, b *bot.Bot, chatID int64, text string, markup models.ReplyMarkup) (int, error) {
	text = truncate(FixMarkdown(text))
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdownV1,
	}
	if kb, ok := markup.(*models.InlineKeyboardMarkup); !ok || kb != nil {
		params.ReplyMarkup = markup
	}

	msg, err := b.SendMessage(ctx, params)
	if err != nil {
		params.ParseMode = ""
		if msg, err = b.SendMessage(ctx, params); err != nil {
			return 0, fmt.Errorf("send message: %w", err)
		}
	}
	return msg.ID, nil
}

// EditCard replaces the text and keyboard of a message. A nil markup removes
// the keyboard. Editing to identical content is not an error.
func EditCard(ctx context.Context, b *bot.Bot, chatID int64, messageID int, text string, markup models.ReplyMarkup) error {
	text = truncate(FixMarkdown(text))
	if kb, ok := markup.(*models.InlineKeyboardMarkup); markup == nil || (ok && kb == nil) {
		markup = &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{}}
	}
	params := &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: markup,
	}

	_, err := b.EditMessageText(ctx, params)
	if err != nil && !isNotModified(err) {
		params.ParseMode = ""
		_, err = b.EditMessageText(ctx, params)
	}
	if err != nil && !isNotModified(err) {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}

func truncate(text string) string {
	if runes := []rune(text); len(runes) > MaxMessageLen {
		return string(runes[:MaxMessageLen-3]) + "..."
	}
	return text
}
