package service

import (
	"context"
	"time"

	"github.com/kvant-lab/vpnbot/internal/domain"
)

// Store is the persistence surface the services run on. The production
// implementation lives in internal/repository and is backed by pgx; tests use
// an in-memory fake.
type Store interface {
	// Users
	CreateUser(ctx context.Context, telegramID int64, username string) (*domain.User, error)
	UserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	UserByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateUserInfo(ctx context.Context, id int64, username string) error
	SetUserSettings(ctx context.Context, id int64, settings map[string]string) error
	SetUserVpnID(ctx context.Context, id int64, vpnID int64) error
	SetUserActive(ctx context.Context, id int64, active bool) error
	SetUserExpiresAt(ctx context.Context, id int64, expiresAt *time.Time) error
	SetUserBalance(ctx context.Context, id int64, balance int64) error
	ListUsers(ctx context.Context, limit, offset int64, usernameFilter string) ([]domain.User, int64, error)
	ListActiveUsers(ctx context.Context) ([]domain.User, error)
	ExpiredActiveUsers(ctx context.Context) ([]domain.User, error)

	// Invoices
	CreateInvoice(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error)
	InvoiceByPayload(ctx context.Context, payload string) (*domain.Invoice, error)
	InvoiceByTelegramChargeID(ctx context.Context, chargeID string) (*domain.Invoice, error)
	MarkInvoiceFailed(ctx context.Context, id int64) error
	ConfirmInvoice(ctx context.Context, id int64, rawPreCheckout []byte) error

	// VPN servers
	VpnServers(ctx context.Context) ([]domain.VpnServer, error)
	VpnServerByID(ctx context.Context, id int64) (*domain.VpnServer, error)
	CreateVpnServer(ctx context.Context, srv *domain.VpnServer) (*domain.VpnServer, error)
	DeleteVpnServer(ctx context.Context, id int64) error

	// InTx runs fn inside one store transaction: every mutation made through
	// tx commits together or rolls back together.
	InTx(ctx context.Context, fn func(tx StoreTx) error) error
}

// StoreTx is the row-locking mutation surface available inside InTx.
type StoreTx interface {
	UserForUpdate(ctx context.Context, id int64) (*domain.User, error)
	InvoiceByPayloadForUpdate(ctx context.Context, payload string) (*domain.Invoice, error)
	CompleteInvoice(ctx context.Context, id int64, telegramChargeID string, providerChargeID *string, rawPayment []byte) error
	SetUserSubscription(ctx context.Context, id int64, expiresAt time.Time, active bool) error
	AddUserBalance(ctx context.Context, id int64, delta int64) (int64, error)
	DeactivateUser(ctx context.Context, id int64) error
}
