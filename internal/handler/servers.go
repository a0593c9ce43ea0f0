package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/kvant-lab/vpnbot/internal/middleware"
	tg "github.com/kvant-lab/vpnbot/internal/telegram"
)

func (h *Handler) handleConnectVpn(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)

	user := middleware.GetUser(ctx)
	chatID := callbackChatID(update)
	if user == nil || chatID == 0 {
		return
	}

	if !user.HasActiveSubscription() {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        "❌ Для подключения нужна активная подписка.",
			ReplyMarkup: tg.InlineKeyboard(tg.ButtonRow(tg.InlineButton("⭐ Оплатить", "pay"))),
		})
		return
	}

	servers, err := h.store.VpnServers(ctx)
	if err != nil {
		slog.Error("list vpn servers", "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Не удалось получить список серверов."})
		return
	}
	if len(servers) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Серверы пока не добавлены."})
		return
	}

	var rows [][]models.InlineKeyboardButton
	for _, srv := range servers {
		label := strings.TrimSpace(fmt.Sprintf("%s %s (%s)", srv.FlagEmoji(), srv.Title, srv.Protocol))
		rows = append(rows, tg.ButtonRow(tg.InlineButton(label, fmt.Sprintf("server_%d", srv.ID))))
	}
	rows = append(rows, tg.ButtonRow(tg.InlineButton("⬅️ Назад", "main_menu")))

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "🌍 Выберите сервер:",
		ReplyMarkup: tg.InlineKeyboard(rows...),
	})
}

func (h *Handler) handleServerSelect(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)

	user := middleware.GetUser(ctx)
	chatID := callbackChatID(update)
	if user == nil || chatID == 0 {
		return
	}

	if !user.HasActiveSubscription() {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Для подключения нужна активная подписка."})
		return
	}

	serverID, err := strconv.ParseInt(strings.TrimPrefix(update.CallbackQuery.Data, "server_"), 10, 64)
	if err != nil {
		return
	}

	srv, err := h.store.VpnServerByID(ctx, serverID)
	if err != nil {
		slog.Error("load vpn server", "server_id", serverID, "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Сервер недоступен."})
		return
	}

	cfg, err := h.userService.VpnConfig(ctx, user, srv)
	if err != nil {
		slog.Error("fetch vpn config", "user_id", user.ID, "server_id", serverID, "error", err)
		h.audit.LogError(err, "vpn config fetch")
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Не удалось получить конфигурацию. Попробуйте позже."})
		return
	}

	text := fmt.Sprintf(
		"🔑 Конфигурация для *%s %s*:\n\n`%s`\n\nВставьте её в клиент %s.",
		srv.FlagEmoji(), srv.Title, cfg, srv.Protocol,
	)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdown,
	})
}
