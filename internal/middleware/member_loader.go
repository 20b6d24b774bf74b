package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/orderboard/internal/domain"
)

type ctxKey string

const ActorKey ctxKey = "actor"

// GetActor extracts the actor from context.
func GetActor(ctx context.Context) (domain.Actor, bool) {
	a, ok := ctx.Value(ActorKey).(domain.Actor)
	return a, ok
}

// WithActor stores the actor in ctx.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

type memberToucher interface {
	Touch(ctx context.Context, actor domain.Actor) error
}

// ActorFromUser builds the actor of a Telegram user.
func ActorFromUser(from *models.User, isAdmin func(int64) bool) domain.Actor {
	name := strings.TrimSpace(from.FirstName + " " + from.LastName)
	if name == "" {
		name = from.Username
	}
	return domain.Actor{
		ID:          strconv.FormatInt(from.ID, 10),
		DisplayName: name,
		Privileged:  isAdmin(from.ID),
	}
}

// MemberLoader returns middleware that puts the actor into context and keeps
// the member directory current.
func MemberLoader(members memberToucher, cfg interface{ IsAdmin(int64) bool }) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			var from *models.User
			if update.Message != nil {
				from = update.Message.From
			} else if update.CallbackQuery != nil {
				from = &update.CallbackQuery.From
			}

			if from == nil || from.IsBot {
				next(ctx, b, update)
				return
			}

			actor := ActorFromUser(from, cfg.IsAdmin)
			if err := members.Touch(ctx, actor); err != nil {
				slog.Warn("touch member", "error", err, "member_id", actor.ID)
			}

			next(WithActor(ctx, actor), b, update)
		}
	}
}
