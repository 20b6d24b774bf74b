package middleware

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// updateInfo is what gets logged about an inbound update.
type updateInfo struct {
	kind   string
	chatID int64
	userID int64
	data   string
}

func (i updateInfo) attrs() []any {
	return []any{"type", i.kind, "chat_id", i.chatID, "user_id", i.userID, "data", i.data}
}

// describeUpdate keeps only the command word of a message; claim arguments
// and free text are not logged.
func describeUpdate(update *models.Update) updateInfo {
	info := updateInfo{kind: "unknown"}

	switch {
	case update.Message != nil:
		msg := update.Message
		info.kind = "message"
		info.chatID = msg.Chat.ID
		if msg.From != nil {
			info.userID = msg.From.ID
		}
		if strings.HasPrefix(msg.Text, "/") {
			info.kind = "command"
			info.data, _, _ = strings.Cut(msg.Text, " ")
		}
	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		info.kind = "callback_query"
		info.userID = cq.From.ID
		info.data = cq.Data
		if cq.Message.Message != nil {
			info.chatID = cq.Message.Message.Chat.ID
		}
	}
	return info
}

// Logging logs commands and button presses at info and everything else at
// debug, with the time the handler took.
func Logging() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			start := time.Now()
			info := describeUpdate(update)

			next(ctx, b, update)

			level := slog.LevelDebug
			if info.kind == "command" || info.kind == "callback_query" {
				level = slog.LevelInfo
			}
			slog.Log(ctx, level, "update handled", append(info.attrs(), "duration", time.Since(start))...)
		}
	}
}
