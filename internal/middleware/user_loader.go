package middleware

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/kvant-lab/vpnbot/internal/domain"
	"github.com/kvant-lab/vpnbot/internal/service"
)

type ctxKey string

const UserKey ctxKey = "user"

// GetUser extracts user from context.
func GetUser(ctx context.Context) *domain.User {
	u, ok := ctx.Value(UserKey).(*domain.User)
	if !ok {
		return nil
	}
	return u
}

// UserLoader returns middleware that resolves the account for the update's
// sender and puts it into context. First contact registers the account.
func UserLoader(userService *service.UserService) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			var from *models.User

			if update.Message != nil {
				from = update.Message.From
			} else if update.CallbackQuery != nil {
				from = &update.CallbackQuery.From
			} else if update.PreCheckoutQuery != nil {
				from = update.PreCheckoutQuery.From
			}

			if from == nil {
				next(ctx, b, update)
				return
			}

			user, err := userService.FindOrCreate(ctx, from.ID, from.Username)
			if err == nil && user != nil {
				ctx = context.WithValue(ctx, UserKey, user)
			}

			next(ctx, b, update)
		}
	}
}
