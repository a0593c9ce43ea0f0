package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kvant-lab/vpnbot/internal/domain"
	"github.com/kvant-lab/vpnbot/internal/telegram"
	"github.com/kvant-lab/vpnbot/internal/worker"
)

// UserService owns account lifecycle: registration on first contact,
// admin-side patches and VPN provisioning.
type UserService struct {
	store Store
	pool  *worker.Pool
	api   *VpnAPI
	audit *telegram.AuditLogger
}

func NewUserService(store Store, pool *worker.Pool, api *VpnAPI, audit *telegram.AuditLogger) *UserService {
	return &UserService{store: store, pool: pool, api: api, audit: audit}
}

// FindOrCreate resolves the account for a Telegram user, registering it on
// first contact and keeping the stored username current.
func (s *UserService) FindOrCreate(ctx context.Context, telegramID int64, username string) (*domain.User, error) {
	user, err := s.store.UserByTelegramID(ctx, telegramID)
	if err == nil {
		if username != "" && user.TelegramUsername != username {
			if err := s.store.UpdateUserInfo(ctx, user.ID, username); err != nil {
				slog.Warn("update username", "user_id", user.ID, "error", err)
			} else {
				user.TelegramUsername = username
			}
		}
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	user, err = s.store.CreateUser(ctx, telegramID, username)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	slog.Info("user registered", "user_id", user.ID, "telegram_id", telegramID, "username", username)
	s.audit.LogRegistration(telegramID, username)
	return user, nil
}

// UserPatch is a partial admin-side update. Nil fields are left untouched.
type UserPatch struct {
	IsActive  *bool
	ExpiresAt *time.Time
	Balance   *int64
}

// AdminUpdate applies a patch to the account. Toggling is_active also
// propagates the state to every VPN server.
func (s *UserService) AdminUpdate(ctx context.Context, id int64, patch UserPatch) (*domain.User, error) {
	user, err := s.store.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.ExpiresAt != nil {
		if err := s.store.SetUserExpiresAt(ctx, id, patch.ExpiresAt); err != nil {
			return nil, fmt.Errorf("set expires_at: %w", err)
		}
		user.ExpiresAt = patch.ExpiresAt
	}
	if patch.Balance != nil {
		if err := s.store.SetUserBalance(ctx, id, *patch.Balance); err != nil {
			return nil, fmt.Errorf("set balance: %w", err)
		}
		user.Balance = *patch.Balance
	}
	if patch.IsActive != nil && *patch.IsActive != user.IsActive {
		if err := s.store.SetUserActive(ctx, id, *patch.IsActive); err != nil {
			return nil, fmt.Errorf("set is_active: %w", err)
		}
		user.IsActive = *patch.IsActive
		s.pool.Submit(&VpnSetActiveJob{Store: s.store, API: s.api, UserID: id, Active: *patch.IsActive})
	}

	slog.Info("user patched", "user_id", id,
		"is_active", patch.IsActive != nil,
		"expires_at", patch.ExpiresAt != nil,
		"balance", patch.Balance != nil,
	)
	return user, nil
}

// VpnConfig returns the user's connection config for a server, lazily
// registering them on the remote side if needed. A stale vpn_id is healed
// by registering again and retrying once.
func (s *UserService) VpnConfig(ctx context.Context, user *domain.User, srv *domain.VpnServer) (string, error) {
	created := false
	if user.VpnID == nil {
		if err := s.provision(ctx, user, srv); err != nil {
			return "", err
		}
		created = true
	}

	cfg, err := s.api.UserConfig(ctx, srv, *user.VpnID)
	if err == nil {
		return cfg, nil
	}
	if created {
		return "", fmt.Errorf("fetch config: %w", err)
	}

	slog.Warn("config fetch failed, re-provisioning", "user_id", user.ID, "server", srv.Title, "error", err)
	if err := s.provision(ctx, user, srv); err != nil {
		return "", err
	}
	cfg, err = s.api.UserConfig(ctx, srv, *user.VpnID)
	if err != nil {
		return "", fmt.Errorf("fetch config after re-provision: %w", err)
	}
	return cfg, nil
}

func (s *UserService) provision(ctx context.Context, user *domain.User, srv *domain.VpnServer) error {
	vpnID, err := s.api.CreateUser(ctx, srv, user.TelegramID, user.TelegramUsername)
	if err != nil {
		return fmt.Errorf("provision user: %w", err)
	}
	if err := s.store.SetUserVpnID(ctx, user.ID, vpnID); err != nil {
		return fmt.Errorf("store vpn id: %w", err)
	}
	user.VpnID = &vpnID
	return nil
}
