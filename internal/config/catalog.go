package config

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// StarsCurrency is the only currency Telegram Stars invoices carry.
	StarsCurrency = "XTR"

	// Worker retry policy for VPN provisioning and notification jobs.
	JobAttempts   = 3
	JobRetryDelay = 5 * time.Second

	// Bounded timeout for outbound Telegram calls made outside a handler.
	GatewayTimeout = 30 * time.Second

	// RateLimitPerMinute caps messages per chat per minute.
	RateLimitPerMinute = 20

	// Worker pool sizing.
	WorkerCount     = 4
	WorkerQueueSize = 256
)

// BalanceUnitsPerStar converts purchased stars into internal balance units
// for top-ups: 100 stars buy 182 units.
var BalanceUnitsPerStar = decimal.RequireFromString("1.82")

// StarsToBalanceUnits applies the top-up conversion rate, truncating to whole
// units.
func StarsToBalanceUnits(stars int64) int64 {
	return decimal.NewFromInt(stars).Mul(BalanceUnitsPerStar).IntPart()
}

// PurchaseOption is one entry of the static star-payment catalog. Months and
// BalanceCredit are mutually exclusive: a subscription purchase extends the
// expiry, a top-up credits the balance.
type PurchaseOption struct {
	Key           string
	Title         string
	Description   string
	Stars         int64
	Months        int
	BalanceCredit int64
}

// ActivationOption converts already-held balance into subscription time.
type ActivationOption struct {
	Key         string
	Title       string
	BalanceCost int64
	Months      int
}

// SubscriptionCatalog maps callback data to subscription invoices.
var SubscriptionCatalog = []PurchaseOption{
	{Key: "subscribe_1_month", Title: "VPN на 1 месяц", Description: "Доступ к VPN сервису на 1 месяц", Stars: 100, Months: 1},
	{Key: "subscribe_3_months", Title: "VPN на 3 месяца", Description: "Доступ к VPN сервису на 3 месяца", Stars: 270, Months: 3},
	{Key: "subscribe_6_months", Title: "VPN на 6 месяцев", Description: "Доступ к VPN сервису на 6 месяцев", Stars: 500, Months: 6},
	{Key: "subscribe_1_year", Title: "VPN на 1 год", Description: "Доступ к VPN сервису на 1 год", Stars: 900, Months: 12},
}

// TopUpCatalog maps callback data to balance top-up invoices.
var TopUpCatalog = []PurchaseOption{
	{Key: "topup_50", Title: "Пополнение баланса", Description: "Пополнение на 50 ⭐", Stars: 50, BalanceCredit: StarsToBalanceUnits(50)},
	{Key: "topup_100", Title: "Пополнение баланса", Description: "Пополнение на 100 ⭐", Stars: 100, BalanceCredit: StarsToBalanceUnits(100)},
	{Key: "topup_250", Title: "Пополнение баланса", Description: "Пополнение на 250 ⭐", Stars: 250, BalanceCredit: StarsToBalanceUnits(250)},
	{Key: "topup_500", Title: "Пополнение баланса", Description: "Пополнение на 500 ⭐", Stars: 500, BalanceCredit: StarsToBalanceUnits(500)},
}

// ActivationCatalog maps callback data to balance-funded activations.
var ActivationCatalog = []ActivationOption{
	{Key: "activate_1_month", Title: "1 месяц", BalanceCost: 182, Months: 1},
	{Key: "activate_3_months", Title: "3 месяца", BalanceCost: 500, Months: 3},
	{Key: "activate_1_year", Title: "1 год", BalanceCost: 1800, Months: 12},
}

// FindPurchase looks a key up across the subscription and top-up catalogs.
func FindPurchase(key string) (PurchaseOption, bool) {
	for _, opt := range SubscriptionCatalog {
		if opt.Key == key {
			return opt, true
		}
	}
	for _, opt := range TopUpCatalog {
		if opt.Key == key {
			return opt, true
		}
	}
	return PurchaseOption{}, false
}

// FindActivation looks a key up in the activation catalog.
func FindActivation(key string) (ActivationOption, bool) {
	for _, opt := range ActivationCatalog {
		if opt.Key == key {
			return opt, true
		}
	}
	return ActivationOption{}, false
}
