package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kvant-lab/vpnbot/internal/domain"
	"github.com/kvant-lab/vpnbot/internal/repository/sqlc"
	"github.com/kvant-lab/vpnbot/internal/service"
)

const uniqueViolation = "23505"

// Store implements service.Store on top of pgx and the sqlc query layer.
type Store struct {
	db      *pgxpool.Pool
	queries *sqlc.Queries
}

func NewStore(db *pgxpool.Pool, queries *sqlc.Queries) *Store {
	return &Store{db: db, queries: queries}
}

func (s *Store) CreateUser(ctx context.Context, telegramID int64, username string) (*domain.User, error) {
	row, err := s.queries.CreateUser(ctx, sqlc.CreateUserParams{
		TelegramID:       telegramID,
		TelegramUsername: username,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return rowToUser(row), nil
}

func (s *Store) UserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	row, err := s.queries.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}
	return rowToUser(row), nil
}

func (s *Store) UserByID(ctx context.Context, id int64) (*domain.User, error) {
	row, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return rowToUser(row), nil
}

func (s *Store) UpdateUserInfo(ctx context.Context, id int64, username string) error {
	return s.queries.UpdateUserInfo(ctx, sqlc.UpdateUserInfoParams{
		ID:               id,
		TelegramUsername: username,
	})
}

func (s *Store) SetUserSettings(ctx context.Context, id int64, settings map[string]string) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return s.queries.SetUserSettings(ctx, sqlc.SetUserSettingsParams{ID: id, Settings: data})
}

func (s *Store) SetUserVpnID(ctx context.Context, id int64, vpnID int64) error {
	return s.queries.SetUserVpnID(ctx, sqlc.SetUserVpnIDParams{ID: id, VpnID: &vpnID})
}

func (s *Store) SetUserActive(ctx context.Context, id int64, active bool) error {
	return s.queries.SetUserActive(ctx, sqlc.SetUserActiveParams{ID: id, IsActive: active})
}

func (s *Store) SetUserExpiresAt(ctx context.Context, id int64, expiresAt *time.Time) error {
	return s.queries.SetUserExpiresAt(ctx, sqlc.SetUserExpiresAtParams{
		ID:        id,
		ExpiresAt: timePtrToPgTimestamptz(expiresAt),
	})
}

func (s *Store) SetUserBalance(ctx context.Context, id int64, balance int64) error {
	return s.queries.SetUserBalance(ctx, sqlc.SetUserBalanceParams{ID: id, Balance: balance})
}

func (s *Store) ListUsers(ctx context.Context, limit, offset int64, usernameFilter string) ([]domain.User, int64, error) {
	rows, err := s.queries.ListUsers(ctx, sqlc.ListUsersParams{
		Limit:            limit,
		Offset:           offset,
		TelegramUsername: usernameFilter,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	total, err := s.queries.CountUsers(ctx, usernameFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, *rowToUser(row))
	}
	return users, total, nil
}

func (s *Store) ListActiveUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.queries.ListActiveUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, *rowToUser(row))
	}
	return users, nil
}

func (s *Store) ExpiredActiveUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.queries.GetExpiredActiveUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("get expired active users: %w", err)
	}
	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, *rowToUser(row))
	}
	return users, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	metadata, err := json.Marshal(inv.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	row, err := s.queries.CreateInvoice(ctx, sqlc.CreateInvoiceParams{
		UserID:           inv.UserID,
		TelegramUsername: inv.TelegramUsername,
		Amount:           inv.Amount,
		Currency:         inv.Currency,
		Payload:          inv.Payload,
		Metadata:         metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	return rowToInvoice(row), nil
}

func (s *Store) InvoiceByPayload(ctx context.Context, payload string) (*domain.Invoice, error) {
	row, err := s.queries.GetInvoiceByPayload(ctx, payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("get invoice by payload: %w", err)
	}
	return rowToInvoice(row), nil
}

func (s *Store) InvoiceByTelegramChargeID(ctx context.Context, chargeID string) (*domain.Invoice, error) {
	row, err := s.queries.GetInvoiceByTelegramChargeID(ctx, &chargeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("get invoice by charge id: %w", err)
	}
	return rowToInvoice(row), nil
}

func (s *Store) MarkInvoiceFailed(ctx context.Context, id int64) error {
	return s.queries.SetInvoiceStatus(ctx, sqlc.SetInvoiceStatusParams{
		ID:     id,
		Status: string(domain.InvoiceStatusFailed),
	})
}

func (s *Store) ConfirmInvoice(ctx context.Context, id int64, rawPreCheckout []byte) error {
	raw := string(rawPreCheckout)
	return s.queries.ConfirmInvoice(ctx, sqlc.ConfirmInvoiceParams{
		ID:                  id,
		RawPreCheckoutQuery: &raw,
	})
}

func (s *Store) VpnServers(ctx context.Context) ([]domain.VpnServer, error) {
	rows, err := s.queries.ListVpnServers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vpn servers: %w", err)
	}
	servers := make([]domain.VpnServer, 0, len(rows))
	for _, row := range rows {
		servers = append(servers, *rowToServer(row))
	}
	return servers, nil
}

func (s *Store) VpnServerByID(ctx context.Context, id int64) (*domain.VpnServer, error) {
	row, err := s.queries.GetVpnServer(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrServerNotFound
		}
		return nil, fmt.Errorf("get vpn server: %w", err)
	}
	return rowToServer(row), nil
}

func (s *Store) CreateVpnServer(ctx context.Context, srv *domain.VpnServer) (*domain.VpnServer, error) {
	row, err := s.queries.CreateVpnServer(ctx, sqlc.CreateVpnServerParams{
		Title:       srv.Title,
		VpnUrl:      srv.VpnURL,
		BearerToken: srv.BearerToken,
		Country:     srv.Country,
		Protocol:    srv.Protocol,
	})
	if err != nil {
		return nil, fmt.Errorf("create vpn server: %w", err)
	}
	return rowToServer(row), nil
}

func (s *Store) DeleteVpnServer(ctx context.Context, id int64) error {
	return s.queries.DeleteVpnServer(ctx, id)
}

// InTx runs fn inside one database transaction. A unique violation on the
// telegram charge id surfaces as ErrDuplicatePayment so a racing duplicate
// delivery resolves to the no-op path.
func (s *Store) InTx(ctx context.Context, fn func(tx service.StoreTx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&storeTx{queries: s.queries.WithTx(tx)}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicatePayment
		}
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type storeTx struct {
	queries *sqlc.Queries
}

func (t *storeTx) UserForUpdate(ctx context.Context, id int64) (*domain.User, error) {
	row, err := t.queries.GetUserForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("lock user: %w", err)
	}
	return rowToUser(row), nil
}

func (t *storeTx) InvoiceByPayloadForUpdate(ctx context.Context, payload string) (*domain.Invoice, error) {
	row, err := t.queries.GetInvoiceByPayloadForUpdate(ctx, payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("lock invoice: %w", err)
	}
	return rowToInvoice(row), nil
}

func (t *storeTx) CompleteInvoice(ctx context.Context, id int64, telegramChargeID string, providerChargeID *string, rawPayment []byte) error {
	raw := string(rawPayment)
	err := t.queries.CompleteInvoice(ctx, sqlc.CompleteInvoiceParams{
		ID:                      id,
		TelegramPaymentChargeID: &telegramChargeID,
		ProviderPaymentChargeID: providerChargeID,
		RawSuccessfulPayment:    &raw,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicatePayment
		}
		return fmt.Errorf("complete invoice: %w", err)
	}
	return nil
}

func (t *storeTx) SetUserSubscription(ctx context.Context, id int64, expiresAt time.Time, active bool) error {
	return t.queries.SetUserSubscription(ctx, sqlc.SetUserSubscriptionParams{
		ID:        id,
		ExpiresAt: timePtrToPgTimestamptz(&expiresAt),
		IsActive:  active,
	})
}

func (t *storeTx) AddUserBalance(ctx context.Context, id int64, delta int64) (int64, error) {
	balance, err := t.queries.AddUserBalance(ctx, sqlc.AddUserBalanceParams{ID: id, Amount: delta})
	if err != nil {
		return 0, fmt.Errorf("add user balance: %w", err)
	}
	return balance, nil
}

func (t *storeTx) DeactivateUser(ctx context.Context, id int64) error {
	return t.queries.DeactivateUser(ctx, id)
}
