package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/kvant-lab/vpnbot/internal/config"
	"github.com/kvant-lab/vpnbot/internal/domain"
	"github.com/kvant-lab/vpnbot/internal/middleware"
	tg "github.com/kvant-lab/vpnbot/internal/telegram"
)

func (h *Handler) handlePayMenu(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)

	chatID := callbackChatID(update)
	if chatID == 0 {
		return
	}

	var rows [][]models.InlineKeyboardButton
	for _, opt := range config.SubscriptionCatalog {
		label := fmt.Sprintf("%s — %d ⭐", opt.Title, opt.Stars)
		rows = append(rows, tg.ButtonRow(tg.InlineButton(label, opt.Key)))
	}
	for _, opt := range config.TopUpCatalog {
		label := fmt.Sprintf("%s — %d ⭐", opt.Title, opt.Stars)
		rows = append(rows, tg.ButtonRow(tg.InlineButton(label, opt.Key)))
	}
	rows = append(rows, tg.ButtonRow(tg.InlineButton("⬅️ Назад", "main_menu")))

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "⭐ *Оплата через Telegram Stars*\n\nВыберите подписку или пополнение баланса:",
		ParseMode:   models.ParseModeMarkdown,
		ReplyMarkup: tg.InlineKeyboard(rows...),
	})
}

func (h *Handler) handlePurchase(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)

	user := middleware.GetUser(ctx)
	chatID := callbackChatID(update)
	if user == nil || chatID == 0 {
		return
	}

	opt, ok := config.FindPurchase(update.CallbackQuery.Data)
	if !ok {
		slog.Warn("unknown purchase key", "data", update.CallbackQuery.Data, "user_id", user.ID)
		return
	}

	if _, err := h.invoiceService.Issue(ctx, user, opt); err != nil {
		slog.Error("issue invoice", "user_id", user.ID, "key", opt.Key, "error", err)
		text := "❌ Не удалось создать счёт. Попробуйте позже."
		if errors.Is(err, domain.ErrGatewayUnavailable) {
			h.audit.LogError(err, "invoice issue")
		}
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	}
}
