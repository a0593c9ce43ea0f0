package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/kvant-lab/vpnbot/internal/config"
	"github.com/kvant-lab/vpnbot/internal/domain"
	"github.com/kvant-lab/vpnbot/internal/telegram"
)

// InvoiceService issues Stars invoices and records them before the payment
// dialog is ever shown, so every later payment event maps back to a row.
type InvoiceService struct {
	store Store
	gw    telegram.Gateway
}

func NewInvoiceService(store Store, gw telegram.Gateway) *InvoiceService {
	return &InvoiceService{store: store, gw: gw}
}

// GeneratePayload builds the opaque token carried through the whole payment
// round trip: user_{id}_{kind}_{8 random hex chars}.
func GeneratePayload(userID int64, kind string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("user_%d_%s_%s", userID, kind, suffix)
}

// Issue persists a created invoice and sends it to the user. When Telegram
// rejects the send, the row is marked failed so it can never pass the
// pre-checkout gate.
func (s *InvoiceService) Issue(ctx context.Context, user *domain.User, opt config.PurchaseOption) (*domain.Invoice, error) {
	metadata := map[string]int64{}
	if opt.Months > 0 {
		metadata[domain.MetaMonths] = int64(opt.Months)
	}
	if opt.BalanceCredit > 0 {
		metadata[domain.MetaBalanceCredit] = opt.BalanceCredit
	}

	inv, err := s.store.CreateInvoice(ctx, &domain.Invoice{
		UserID:           user.ID,
		TelegramUsername: user.TelegramUsername,
		Amount:           opt.Stars,
		Currency:         config.StarsCurrency,
		Status:           domain.InvoiceStatusCreated,
		Payload:          GeneratePayload(user.ID, opt.Key),
		Metadata:         metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	err = s.gw.SendInvoice(ctx, user.TelegramID, telegram.InvoiceParams{
		Title:       opt.Title,
		Description: opt.Description,
		Payload:     inv.Payload,
		Currency:    config.StarsCurrency,
		Amount:      opt.Stars,
	})
	if err != nil {
		if failErr := s.store.MarkInvoiceFailed(ctx, inv.ID); failErr != nil {
			slog.Error("mark invoice failed", "invoice_id", inv.ID, "error", failErr)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	slog.Info("invoice issued",
		"invoice_id", inv.ID,
		"user_id", user.ID,
		"payload", inv.Payload,
		"stars", opt.Stars,
	)
	return inv, nil
}
