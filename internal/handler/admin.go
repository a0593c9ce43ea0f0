package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/kvant-lab/vpnbot/internal/middleware"
	"github.com/kvant-lab/vpnbot/internal/service"
	tg "github.com/kvant-lab/vpnbot/internal/telegram"
)

func (h *Handler) handleBroadcast(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil || !h.cfg.IsAdmin(user.TelegramID) {
		return
	}

	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, "/broadcast"))
	if text == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Используйте: /broadcast <текст>",
		})
		return
	}

	users, err := h.store.ListActiveUsers(ctx)
	if err != nil {
		slog.Error("list active users for broadcast", "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Не удалось получить список пользователей."})
		return
	}

	gw := tg.NewBotGateway(b)
	queued := 0
	for _, u := range users {
		if h.pool.Submit(&service.NotifyJob{Gateway: gw, ChatID: u.TelegramID, Text: text}) {
			queued++
		}
	}

	slog.Info("broadcast queued", "admin", user.TelegramID, "recipients", queued)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("📣 Рассылка поставлена в очередь: %d получателей.", queued),
	})
}

func (h *Handler) handleStats(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil || !h.cfg.IsAdmin(user.TelegramID) {
		return
	}

	_, total, err := h.store.ListUsers(ctx, 1, 0, "")
	if err != nil {
		slog.Error("count users", "error", err)
		return
	}
	active, err := h.store.ListActiveUsers(ctx)
	if err != nil {
		slog.Error("list active users", "error", err)
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text: fmt.Sprintf("📊 Пользователей: %d\n✅ С активной подпиской: %d",
			total, len(active)),
	})
}
