package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Register registers all command and callback handlers on the bot instance.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/broadcast", bot.MatchTypePrefix, h.handleBroadcast)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/stats", bot.MatchTypePrefix, h.handleStats)

	// Main menu callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "pay", bot.MatchTypeExact, h.handlePayMenu)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "balance", bot.MatchTypeExact, h.handleBalance)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "support", bot.MatchTypeExact, h.handleSupport)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "connect_vpn", bot.MatchTypeExact, h.handleConnectVpn)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "main_menu", bot.MatchTypeExact, h.handleMainMenu)

	// Purchase callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "subscribe_", bot.MatchTypePrefix, h.handlePurchase)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "topup_", bot.MatchTypePrefix, h.handlePurchase)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "activate_", bot.MatchTypePrefix, h.handleActivate)

	// VPN server callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "server_", bot.MatchTypePrefix, h.handleServerSelect)

	// Catch-all text handler, registered last so command handlers match
	// first. HandleText forwards successful_payment messages to the payment
	// path and feeds everything else to the support flow.
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, h.HandleText)

	// Note: pre_checkout_query updates have no registered handler type in the
	// library and are routed via the default handler in main.go.
}

func (h *Handler) answerCallback(ctx context.Context, update *models.Update) {
	if update.CallbackQuery != nil {
		h.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})
	}
}

func callbackChatID(update *models.Update) int64 {
	if update.CallbackQuery == nil {
		return 0
	}
	if msg := update.CallbackQuery.Message.Message; msg != nil {
		return msg.Chat.ID
	}
	return update.CallbackQuery.From.ID
}
