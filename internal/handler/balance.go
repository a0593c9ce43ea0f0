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

func (h *Handler) handleBalance(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)

	user := middleware.GetUser(ctx)
	chatID := callbackChatID(update)
	if user == nil || chatID == 0 {
		return
	}

	var rows [][]models.InlineKeyboardButton
	for _, opt := range config.ActivationCatalog {
		label := fmt.Sprintf("%s — %d 💎", opt.Title, opt.BalanceCost)
		rows = append(rows, tg.ButtonRow(tg.InlineButton(label, opt.Key)))
	}
	rows = append(rows, tg.ButtonRow(tg.InlineButton("⬅️ Назад", "main_menu")))

	text := fmt.Sprintf(
		"💰 *Ваш баланс: %d*\n\n"+
			"Баланс можно потратить на активацию подписки:",
		user.Balance,
	)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeMarkdown,
		ReplyMarkup: tg.InlineKeyboard(rows...),
	})
}

func (h *Handler) handleActivate(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)

	user := middleware.GetUser(ctx)
	chatID := callbackChatID(update)
	if user == nil || chatID == 0 {
		return
	}

	opt, ok := config.FindActivation(update.CallbackQuery.Data)
	if !ok {
		slog.Warn("unknown activation key", "data", update.CallbackQuery.Data, "user_id", user.ID)
		return
	}

	result, err := h.subscriptionService.Activate(ctx, user.ID, opt)
	if err != nil {
		var insufficient *domain.InsufficientBalanceError
		if errors.As(err, &insufficient) {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text: fmt.Sprintf("❌ Недостаточно средств: нужно %d, на балансе %d.",
					insufficient.Required, insufficient.Current),
			})
			return
		}
		slog.Error("activate from balance", "user_id", user.ID, "key", opt.Key, "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Не удалось активировать подписку. Попробуйте позже.",
		})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf("✅ Подписка активна до *%s*.\n💰 Остаток баланса: %d",
			result.ExpiresAt.Format("02.01.2006"), result.NewBalance),
		ParseMode: models.ParseModeMarkdown,
	})
}
