package domain

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrServerNotFound      = errors.New("vpn server not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicatePayment    = errors.New("payment already processed")
	ErrGatewayUnavailable  = errors.New("telegram gateway unavailable")
	ErrUnknownPurchase     = errors.New("unknown purchase kind")
)
