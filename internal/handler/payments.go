package handler

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/go-telegram/bot/models"
	"github.com/kvant-lab/vpnbot/internal/service"
)

// HandlePreCheckout answers the payment gate for an incoming
// pre_checkout_query update.
func (h *Handler) HandlePreCheckout(ctx context.Context, query *models.PreCheckoutQuery) {
	raw, err := json.Marshal(query)
	if err != nil {
		slog.Error("marshal pre_checkout_query", "error", err)
	}

	ev := service.PreCheckoutEvent{
		QueryID:     query.ID,
		Payload:     query.InvoicePayload,
		Currency:    query.Currency,
		TotalAmount: int64(query.TotalAmount),
		Raw:         raw,
	}
	if query.From != nil {
		ev.FromID = query.From.ID
	}

	if err := h.paymentService.HandlePreCheckout(ctx, ev); err != nil {
		slog.Error("pre-checkout handling failed", "payload", ev.Payload, "error", err)
	}
}

// HandleSuccessfulPayment completes the payment carried by a message with
// a successful_payment attachment.
func (h *Handler) HandleSuccessfulPayment(ctx context.Context, msg *models.Message) {
	payment := msg.SuccessfulPayment
	if payment == nil {
		return
	}

	raw, err := json.Marshal(payment)
	if err != nil {
		slog.Error("marshal successful_payment", "error", err)
	}

	ev := service.SuccessfulPaymentEvent{
		Payload:          payment.InvoicePayload,
		Currency:         payment.Currency,
		TotalAmount:      int64(payment.TotalAmount),
		TelegramChargeID: payment.TelegramPaymentChargeID,
		ProviderChargeID: payment.ProviderPaymentChargeID,
		ChatID:           msg.Chat.ID,
		Raw:              raw,
	}

	if err := h.paymentService.CompletePayment(ctx, ev); err != nil {
		slog.Error("payment completion failed", "payload", ev.Payload, "error", err)
	}
}
