package domain

import "fmt"

// PaymentFault classifies why an incoming payment event was rejected.
type PaymentFault string

const (
	FaultMalformedEvent   PaymentFault = "malformed_event"
	FaultInvoiceNotFound  PaymentFault = "invoice_not_found"
	FaultPayloadMismatch  PaymentFault = "payload_mismatch"
	FaultCurrencyMismatch PaymentFault = "currency_mismatch"
	FaultAmountMismatch   PaymentFault = "amount_mismatch"
	FaultAlreadyProcessed PaymentFault = "already_processed"
)

// PaymentValidationError carries the diagnostic detail for logs and a short
// support-pointing message safe to show to the user. Expected/received values
// never reach the user.
type PaymentValidationError struct {
	Fault    PaymentFault
	Payload  string
	Expected string
	Received string
}

func (e *PaymentValidationError) Error() string {
	if e.Expected == "" && e.Received == "" {
		return fmt.Sprintf("payment validation failed: %s (payload %q)", e.Fault, e.Payload)
	}
	return fmt.Sprintf("payment validation failed: %s (payload %q, expected %q, received %q)",
		e.Fault, e.Payload, e.Expected, e.Received)
}

// UserMessage returns the short reason shown to the user.
func (e *PaymentValidationError) UserMessage() string {
	switch e.Fault {
	case FaultMalformedEvent:
		return "Отсутствуют обязательные данные платежа. Обратитесь в поддержку."
	case FaultInvoiceNotFound:
		return "Счёт не найден. Обратитесь в поддержку."
	case FaultCurrencyMismatch:
		return "Неверная валюта платежа."
	case FaultAmountMismatch:
		return "Неверная сумма платежа."
	case FaultAlreadyProcessed:
		return "Транзакция уже обработана."
	default:
		return "Произошла ошибка при обработке платежа. Обратитесь в поддержку."
	}
}

// InsufficientBalanceError reports how much was required versus held, for
// user messaging on balance-funded activation.
type InsufficientBalanceError struct {
	Required int64
	Current  int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: required %d, current %d", e.Required, e.Current)
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}
