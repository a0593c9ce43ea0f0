package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type rateWindow struct {
	count int
	start time.Time
}

// RateLimit returns middleware that enforces a per-chat message limit over
// a sliding one-minute window. Callbacks and payment updates are never
// limited.
func RateLimit(perMinute int) bot.Middleware {
	var mu sync.Mutex
	windows := make(map[int64]*rateWindow)

	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.SuccessfulPayment != nil {
				next(ctx, b, update)
				return
			}

			chatID := update.Message.Chat.ID
			now := time.Now()

			mu.Lock()
			w, ok := windows[chatID]
			if !ok || now.Sub(w.start) > time.Minute {
				w = &rateWindow{start: now}
				windows[chatID] = w
			}
			w.count++
			limited := w.count > perMinute
			mu.Unlock()

			if limited {
				b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: chatID,
					Text:   "⏳ Слишком много запросов. Подождите немного.",
				})
				return
			}

			next(ctx, b, update)
		}
	}
}
