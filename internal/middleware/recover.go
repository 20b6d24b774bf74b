package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const panicNotice = "❌ Something went wrong. Please try again later."

// Recover stops a handler panic from killing the poller. A pending button
// press is answered so the client stops waiting. report, when set, receives
// the panic as an error.
func Recover(report func(err error, where string)) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				info := describeUpdate(update)
				slog.Error("handler panic",
					append(info.attrs(), "panic", r, "update_id", update.ID, "stack", string(debug.Stack()))...)

				if update.CallbackQuery != nil {
					b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
						CallbackQueryID: update.CallbackQuery.ID,
						Text:            panicNotice,
						ShowAlert:       true,
					})
				}
				if report != nil {
					report(fmt.Errorf("panic: %v", r), fmt.Sprintf("%s %s (update %d)", info.kind, info.data, update.ID))
				}
			}()
			next(ctx, b, update)
		}
	}
}
