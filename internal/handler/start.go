package handler

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/kvant-lab/vpnbot/internal/domain"
	"github.com/kvant-lab/vpnbot/internal/middleware"
	tg "github.com/kvant-lab/vpnbot/internal/telegram"
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	h.sendMainMenu(ctx, b, update.Message.Chat.ID, user)
}

func (h *Handler) handleMainMenu(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	h.sendMainMenu(ctx, b, callbackChatID(update), user)
}

func (h *Handler) sendMainMenu(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User) {
	status := "❌ Подписка не активна"
	if user.HasActiveSubscription() {
		status = fmt.Sprintf("✅ Подписка активна до *%s*", user.ExpiresAt.Format("02.01.2006"))
	}

	text := fmt.Sprintf(
		"👋 Привет!\n\n"+
			"Это бот для доступа к VPN.\n\n"+
			"%s\n"+
			"💰 Баланс: *%d*\n\n"+
			"Выберите действие:",
		status, user.Balance,
	)

	keyboard := tg.InlineKeyboard(
		tg.ButtonRow(tg.InlineButton("🔑 Подключить VPN", "connect_vpn")),
		tg.ButtonRow(tg.InlineButton("⭐ Оплатить подписку", "pay")),
		tg.ButtonRow(tg.InlineButton("💰 Баланс", "balance")),
		tg.ButtonRow(tg.InlineButton("🛟 Поддержка", "support")),
	)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeMarkdown,
		ReplyMarkup: keyboard,
	})
}
