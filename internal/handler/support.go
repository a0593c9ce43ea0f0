package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/kvant-lab/vpnbot/internal/middleware"
)

const pendingActionKey = "pending_action"
const pendingSupport = "support"

func (h *Handler) handleSupport(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)

	user := middleware.GetUser(ctx)
	chatID := callbackChatID(update)
	if user == nil || chatID == 0 {
		return
	}

	settings := user.Settings
	if settings == nil {
		settings = map[string]string{}
	}
	settings[pendingActionKey] = pendingSupport
	if err := h.store.SetUserSettings(ctx, user.ID, settings); err != nil {
		slog.Error("set pending action", "user_id", user.ID, "error", err)
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "🛟 Опишите вашу проблему одним сообщением, и мы передадим её в поддержку.",
	})
}

// HandleText routes free-form private messages: successful_payment
// attachments go to the payment path, the rest feeds a pending support
// request if one is armed.
func (h *Handler) HandleText(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	msg := update.Message

	// Skip commands
	if len(msg.Text) > 0 && msg.Text[0] == '/' {
		return
	}

	// Payment confirmations arrive as messages and match the catch-all text
	// handler before the default handler is ever consulted.
	if msg.SuccessfulPayment != nil {
		h.HandleSuccessfulPayment(ctx, msg)
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil || user.Settings[pendingActionKey] != pendingSupport {
		return
	}

	settings := user.Settings
	delete(settings, pendingActionKey)
	if err := h.store.SetUserSettings(ctx, user.ID, settings); err != nil {
		slog.Error("clear pending action", "user_id", user.ID, "error", err)
	}

	report := fmt.Sprintf("🛟 Обращение от @%s (`%d`):\n\n%s",
		user.TelegramUsername, user.TelegramID, update.Message.Text)
	for _, adminID := range h.cfg.AdminIDs {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    adminID,
			Text:      report,
			ParseMode: models.ParseModeMarkdown,
		})
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   "✅ Сообщение отправлено в поддержку. Мы ответим вам здесь.",
	})
}
