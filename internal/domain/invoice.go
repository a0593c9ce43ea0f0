package domain

import (
	"time"
)

type InvoiceStatus string

const (
	InvoiceStatusCreated   InvoiceStatus = "created"
	InvoiceStatusConfirmed InvoiceStatus = "confirmed"
	InvoiceStatusCompleted InvoiceStatus = "completed"
	InvoiceStatusFailed    InvoiceStatus = "failed"
)

// Metadata keys describing what an invoice buys.
const (
	MetaMonths        = "months"
	MetaBalanceCredit = "balance_credit"
)

// Invoice is a persisted payment intent. The payload token is unique and
// immutable; telegram_payment_charge_id, once set, is the idempotency key
// guarding against duplicate delivery of the same payment.
type Invoice struct {
	ID                      int64
	UserID                  int64
	TelegramUsername        string
	Amount                  int64
	Currency                string
	Status                  InvoiceStatus
	Payload                 string
	TelegramPaymentChargeID *string
	ProviderPaymentChargeID *string
	Metadata                map[string]int64
	RawPreCheckoutQuery     []byte
	RawSuccessfulPayment    []byte
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Months returns the subscription duration this invoice buys, zero if it is
// not a subscription purchase.
func (i *Invoice) Months() int {
	return int(i.Metadata[MetaMonths])
}

// BalanceCredit returns the balance units this invoice buys, zero if it is
// not a top-up.
func (i *Invoice) BalanceCredit() int64 {
	return i.Metadata[MetaBalanceCredit]
}
