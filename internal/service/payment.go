package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/kvant-lab/vpnbot/internal/domain"
	"github.com/kvant-lab/vpnbot/internal/telegram"
	"github.com/kvant-lab/vpnbot/internal/worker"
)

// PreCheckoutEvent is the wire shape of a pre_checkout_query update.
type PreCheckoutEvent struct {
	QueryID     string
	Payload     string
	Currency    string
	TotalAmount int64
	FromID      int64
	Raw         []byte
}

// SuccessfulPaymentEvent is the wire shape of a successful_payment message.
type SuccessfulPaymentEvent struct {
	Payload          string
	Currency         string
	TotalAmount      int64
	TelegramChargeID string
	ProviderChargeID string
	ChatID           int64
	Raw              []byte
}

// PaymentService reconciles incoming Telegram payment events against stored
// invoices and applies their effect to the owning account.
type PaymentService struct {
	store Store
	gw    telegram.Gateway
	pool  *worker.Pool
	api   *VpnAPI
	audit *telegram.AuditLogger
	now   func() time.Time
}

func NewPaymentService(store Store, gw telegram.Gateway, pool *worker.Pool, api *VpnAPI, audit *telegram.AuditLogger) *PaymentService {
	return &PaymentService{
		store: store,
		gw:    gw,
		pool:  pool,
		api:   api,
		audit: audit,
		now:   time.Now,
	}
}

// HandlePreCheckout answers the yes/no gate Telegram requires before
// deducting funds. The gate is answered exactly once; any internal error
// defaults to a negative answer. No account state is mutated here.
func (s *PaymentService) HandlePreCheckout(ctx context.Context, ev PreCheckoutEvent) error {
	if ev.QueryID == "" || ev.Payload == "" {
		vErr := &domain.PaymentValidationError{Fault: domain.FaultMalformedEvent, Payload: ev.Payload}
		slog.Error("pre-checkout rejected", "error", vErr, "query_id", ev.QueryID)
		if ev.QueryID != "" {
			s.answerGate(ctx, ev.QueryID, false, vErr.UserMessage())
		}
		return vErr
	}

	inv, err := s.store.InvoiceByPayload(ctx, ev.Payload)
	if err != nil {
		if errors.Is(err, domain.ErrInvoiceNotFound) {
			vErr := &domain.PaymentValidationError{Fault: domain.FaultInvoiceNotFound, Payload: ev.Payload}
			slog.Error("pre-checkout rejected", "error", vErr, "query_id", ev.QueryID, "user_id", ev.FromID)
			s.answerGate(ctx, ev.QueryID, false, vErr.UserMessage())
			return vErr
		}
		slog.Error("pre-checkout store lookup failed", "error", err, "payload", ev.Payload)
		s.answerGate(ctx, ev.QueryID, false, genericPaymentError)
		return fmt.Errorf("lookup invoice: %w", err)
	}

	if vErr := validatePreCheckout(inv, ev); vErr != nil {
		slog.Error("pre-checkout rejected",
			"error", vErr,
			"query_id", ev.QueryID,
			"invoice_id", inv.ID,
			"status", inv.Status,
		)
		s.answerGate(ctx, ev.QueryID, false, vErr.UserMessage())
		return vErr
	}

	if err := s.store.ConfirmInvoice(ctx, inv.ID, ev.Raw); err != nil {
		slog.Error("pre-checkout confirm failed", "error", err, "invoice_id", inv.ID)
		s.answerGate(ctx, ev.QueryID, false, genericPaymentError)
		return fmt.Errorf("confirm invoice: %w", err)
	}

	slog.Info("pre-checkout approved", "invoice_id", inv.ID, "query_id", ev.QueryID, "payload", ev.Payload)
	s.answerGate(ctx, ev.QueryID, true, "")
	return nil
}

// CompletePayment is the authoritative money-has-moved transition: it marks
// the invoice completed and applies its effect to the account in one store
// transaction. Duplicate deliveries of the same telegram charge id are
// detected and ignored.
func (s *PaymentService) CompletePayment(ctx context.Context, ev SuccessfulPaymentEvent) error {
	if ev.Payload == "" || ev.TelegramChargeID == "" {
		vErr := &domain.PaymentValidationError{Fault: domain.FaultMalformedEvent, Payload: ev.Payload}
		s.reportCompletionFailure(ctx, ev.ChatID, vErr)
		return vErr
	}

	// Idempotency gate: the same successful_payment may be redelivered.
	if _, err := s.store.InvoiceByTelegramChargeID(ctx, ev.TelegramChargeID); err == nil {
		slog.Warn("duplicate payment delivery ignored",
			"telegram_charge_id", ev.TelegramChargeID,
			"payload", ev.Payload,
		)
		return nil
	} else if !errors.Is(err, domain.ErrInvoiceNotFound) {
		return fmt.Errorf("idempotency lookup: %w", err)
	}

	var completed *domain.Invoice
	err := s.store.InTx(ctx, func(tx StoreTx) error {
		inv, err := tx.InvoiceByPayloadForUpdate(ctx, ev.Payload)
		if err != nil {
			if errors.Is(err, domain.ErrInvoiceNotFound) {
				return &domain.PaymentValidationError{Fault: domain.FaultInvoiceNotFound, Payload: ev.Payload}
			}
			return fmt.Errorf("lock invoice: %w", err)
		}

		if vErr := validateSuccessfulPayment(inv, ev); vErr != nil {
			return vErr
		}

		user, err := tx.UserForUpdate(ctx, inv.UserID)
		if err != nil {
			return fmt.Errorf("lock user: %w", err)
		}

		if err := applyInvoiceEffect(ctx, tx, user, inv, s.now()); err != nil {
			return err
		}

		var providerID *string
		if ev.ProviderChargeID != "" {
			providerID = &ev.ProviderChargeID
		}
		if err := tx.CompleteInvoice(ctx, inv.ID, ev.TelegramChargeID, providerID, ev.Raw); err != nil {
			return err
		}

		completed = inv
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicatePayment) {
			// A concurrent delivery won the unique-constraint race.
			slog.Warn("duplicate payment resolved by charge id constraint",
				"telegram_charge_id", ev.TelegramChargeID,
			)
			return nil
		}
		var vErr *domain.PaymentValidationError
		if errors.As(err, &vErr) {
			s.reportCompletionFailure(ctx, ev.ChatID, vErr)
			return vErr
		}
		return fmt.Errorf("complete payment: %w", err)
	}

	slog.Info("payment completed",
		"invoice_id", completed.ID,
		"telegram_charge_id", ev.TelegramChargeID,
		"amount", completed.Amount,
	)
	s.audit.LogPayment(ev.ChatID, completed.Amount, completed.Payload)

	// The subscription is live again; bring the VPN side up out of band.
	if completed.Months() > 0 {
		s.pool.Submit(&VpnSetActiveJob{Store: s.store, API: s.api, UserID: completed.UserID, Active: true})
	}

	// Confirmation is best-effort: a gateway failure must not undo the payment.
	if ev.ChatID != 0 {
		if err := s.gw.SendMessage(ctx, ev.ChatID, completionMessage(completed)); err != nil {
			slog.Warn("payment confirmation send failed", "error", err, "chat_id", ev.ChatID)
		}
	}
	return nil
}

func (s *PaymentService) answerGate(ctx context.Context, queryID string, ok bool, reason string) {
	if err := s.gw.AnswerPreCheckoutQuery(ctx, queryID, ok, reason); err != nil {
		slog.Error("answer pre-checkout failed", "error", err, "query_id", queryID, "ok", ok)
	}
}

// reportCompletionFailure handles a validation failure after money moved:
// the incident is logged at high severity, the invoice is left in its
// last-good state for manual reconciliation, and the user gets a generic
// support pointer when a chat id is known.
func (s *PaymentService) reportCompletionFailure(ctx context.Context, chatID int64, vErr *domain.PaymentValidationError) {
	slog.Error("successful payment rejected after charge", "error", vErr, "chat_id", chatID)
	s.audit.LogError(vErr, "successful_payment validation")
	if chatID != 0 {
		if err := s.gw.SendMessage(ctx, chatID, vErr.UserMessage()); err != nil {
			slog.Warn("payment error message send failed", "error", err, "chat_id", chatID)
		}
	}
}

const genericPaymentError = "Произошла ошибка при обработке платежа. Обратитесь в поддержку."

// validatePreCheckout applies the fail-fast pre-checkout rules to a stored
// invoice. It never mutates anything.
func validatePreCheckout(inv *domain.Invoice, ev PreCheckoutEvent) *domain.PaymentValidationError {
	if ev.Currency != inv.Currency {
		return &domain.PaymentValidationError{
			Fault:    domain.FaultCurrencyMismatch,
			Payload:  inv.Payload,
			Expected: inv.Currency,
			Received: ev.Currency,
		}
	}
	if ev.TotalAmount != inv.Amount {
		return &domain.PaymentValidationError{
			Fault:    domain.FaultAmountMismatch,
			Payload:  inv.Payload,
			Expected: strconv.FormatInt(inv.Amount, 10),
			Received: strconv.FormatInt(ev.TotalAmount, 10),
		}
	}
	// A stale pre-checkout retry must not re-validate an invoice that has
	// already moved past its initial state.
	if inv.Status != domain.InvoiceStatusCreated {
		return &domain.PaymentValidationError{
			Fault:    domain.FaultAlreadyProcessed,
			Payload:  inv.Payload,
			Expected: string(domain.InvoiceStatusCreated),
			Received: string(inv.Status),
		}
	}
	return nil
}

// validateSuccessfulPayment applies the completion rules, same shape as the
// pre-checkout validation.
func validateSuccessfulPayment(inv *domain.Invoice, ev SuccessfulPaymentEvent) *domain.PaymentValidationError {
	if ev.Payload != inv.Payload {
		return &domain.PaymentValidationError{
			Fault:    domain.FaultPayloadMismatch,
			Payload:  inv.Payload,
			Expected: inv.Payload,
			Received: ev.Payload,
		}
	}
	if ev.Currency != inv.Currency {
		return &domain.PaymentValidationError{
			Fault:    domain.FaultCurrencyMismatch,
			Payload:  inv.Payload,
			Expected: inv.Currency,
			Received: ev.Currency,
		}
	}
	if ev.TotalAmount != inv.Amount {
		return &domain.PaymentValidationError{
			Fault:    domain.FaultAmountMismatch,
			Payload:  inv.Payload,
			Expected: strconv.FormatInt(inv.Amount, 10),
			Received: strconv.FormatInt(ev.TotalAmount, 10),
		}
	}
	return nil
}

// applyInvoiceEffect applies what the invoice buys to the locked account row:
// subscription months stack on remaining time, balance credits are plain
// additions.
func applyInvoiceEffect(ctx context.Context, tx StoreTx, user *domain.User, inv *domain.Invoice, now time.Time) error {
	switch {
	case inv.Months() > 0:
		newExpiry := NextExpiry(user.ExpiresAt, inv.Months(), now)
		if err := tx.SetUserSubscription(ctx, user.ID, newExpiry, true); err != nil {
			return fmt.Errorf("extend subscription: %w", err)
		}
	case inv.BalanceCredit() > 0:
		if _, err := tx.AddUserBalance(ctx, user.ID, inv.BalanceCredit()); err != nil {
			return fmt.Errorf("credit balance: %w", err)
		}
	default:
		return fmt.Errorf("invoice %d: %w", inv.ID, domain.ErrUnknownPurchase)
	}
	return nil
}

func completionMessage(inv *domain.Invoice) string {
	if months := inv.Months(); months > 0 {
		return fmt.Sprintf("✅ Оплата прошла успешно!\n\nСписано: %d ⭐\nПодписка продлена на %d мес.", inv.Amount, months)
	}
	return fmt.Sprintf("✅ Оплата прошла успешно!\n\nСписано: %d ⭐\nНачислено: %d ед. на баланс.", inv.Amount, inv.BalanceCredit())
}
